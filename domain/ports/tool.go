package ports

import (
	"context"
	"encoding/json"
)

// Tool is a named operation dispatchable by the toolbox Evaluator.
// Implementations must be safe for concurrent use.
type Tool interface {
	// Name returns the tool's dispatch name.
	Name() string

	// Description returns a human-readable summary of the tool.
	Description() string

	// Execute runs the tool with the given raw JSON arguments and returns
	// tool-specific result data.
	Execute(ctx context.Context, args json.RawMessage) (map[string]any, error)
}

// ArgsModeler is optionally implemented by tools that declare a typed
// arguments struct. The toolbox uses the model to generate a JSON Schema for
// the tool's arguments.
type ArgsModeler interface {
	// ArgsModel returns a zero value of the tool's arguments struct.
	ArgsModel() any
}
