// Package ports defines the interfaces (ports) that decouple the bridge and
// host engine from concrete Evaluator and storage implementations.
package ports

import (
	"context"

	"github.com/clara-ai/clara-go/wireformat"
)

// EnvToken is an opaque handle to host engine state. The bridge passes it
// through to the Evaluator unmodified and never inspects it; Evaluators that
// do not need host state ignore it.
type EnvToken interface{}

// Evaluator accepts a UTF-8 payload and produces a newly allocated result
// buffer whose ownership transfers to the caller. The caller must call
// Release on the returned buffer exactly once, after copying out whatever it
// needs. A non-nil error means no usable result was produced; implementations
// should return a nil buffer alongside an error.
//
// Evaluate blocks for as long as the evaluation takes; no cancellation is
// guaranteed beyond what the implementation honors from ctx. Implementations
// must be safe for concurrent use or serialize internally.
type Evaluator interface {
	Evaluate(ctx context.Context, env EnvToken, input string) (*wireformat.OwnedBuffer, error)
}

// EvaluatorFunc adapts a plain function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, env EnvToken, input string) (*wireformat.OwnedBuffer, error)

// Evaluate implements Evaluator.
func (f EvaluatorFunc) Evaluate(ctx context.Context, env EnvToken, input string) (*wireformat.OwnedBuffer, error) {
	return f(ctx, env, input)
}
