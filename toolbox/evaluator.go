package toolbox

import (
	"context"

	"github.com/clara-ai/clara-go/domain/ports"
	"github.com/clara-ai/clara-go/wireformat"
)

// Evaluator adapts a Manager to the Evaluator port. Results live in
// host-managed memory, so the returned buffer's release is a no-op; the
// bridge's ownership discipline is exercised all the same.
type Evaluator struct {
	manager *Manager
}

// NewEvaluator creates an Evaluator backed by the given Manager.
func NewEvaluator(manager *Manager) *Evaluator {
	return &Evaluator{manager: manager}
}

// Evaluate implements ports.Evaluator. The env token is passed through
// unused; toolbox dispatch needs no host state.
func (e *Evaluator) Evaluate(ctx context.Context, _ ports.EnvToken, input string) (*wireformat.OwnedBuffer, error) {
	out := e.manager.Dispatch(ctx, []byte(input))
	return wireformat.NewOwnedBuffer(out, nil), nil
}
