package toolbox

import (
	"context"
	"encoding/json"
)

// EchoTool returns its arguments unchanged. It exists to exercise the full
// dispatch path end to end.
type EchoTool struct{}

// NewEchoTool creates an EchoTool.
func NewEchoTool() *EchoTool {
	return &EchoTool{}
}

// Name implements ports.Tool.
func (*EchoTool) Name() string {
	return "echo"
}

// Description implements ports.Tool.
func (*EchoTool) Description() string {
	return "Echoes back the provided arguments"
}

// Execute implements ports.Tool.
func (*EchoTool) Execute(_ context.Context, args json.RawMessage) (map[string]any, error) {
	var echoed any
	if len(args) > 0 {
		if err := json.Unmarshal(args, &echoed); err != nil {
			return nil, err
		}
	}
	return map[string]any{"echoed": echoed}, nil
}
