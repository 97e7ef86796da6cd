// Package toolbox provides the native Evaluator: a registry of named tools
// dispatched by JSON request payloads, with schema generation for tool
// arguments and in-band JSON error envelopes for every failure mode.
package toolbox

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/invopop/jsonschema"

	domainerrors "github.com/clara-ai/clara-go/domain/errors"
	"github.com/clara-ai/clara-go/domain/ports"
	"github.com/clara-ai/clara-go/wireformat"
)

// Manager is an immutable collection of named tools. Once created via
// NewManager, tools cannot be added or removed, which keeps dispatch
// lock-free and safe for concurrent use.
type Manager struct {
	tools      map[string]ports.Tool
	schemas    map[string]string
	names      []string // sorted for consistent iteration
	middleware []Middleware
}

// managerBuilder accumulates configuration during Manager construction.
type managerBuilder struct {
	tools      map[string]ports.Tool
	middleware []Middleware
	errors     []error
}

// ManagerOption is a functional option for configuring a Manager.
type ManagerOption func(*managerBuilder)

// WithTool registers a tool. Registration fails if the name is empty or
// already taken.
func WithTool(tool ports.Tool) ManagerOption {
	return func(b *managerBuilder) {
		if tool == nil {
			b.errors = append(b.errors, fmt.Errorf("tool cannot be nil"))
			return
		}
		name := tool.Name()
		if name == "" {
			b.errors = append(b.errors, fmt.Errorf("tool name cannot be empty"))
			return
		}
		if _, exists := b.tools[name]; exists {
			b.errors = append(b.errors, fmt.Errorf("duplicate tool name: %q", name))
			return
		}
		b.tools[name] = tool
	}
}

// WithMiddleware adds middleware around every tool execution. Middleware
// executes in FIFO order (first added wraps outermost).
func WithMiddleware(mw ...Middleware) ManagerOption {
	return func(b *managerBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}

// NewManager creates an immutable Manager with the given options. Argument
// schemas are generated up front for tools that declare an args model.
//
// Example:
//
//	manager, err := toolbox.NewManager(
//	    toolbox.WithMiddleware(toolbox.PanicRecoveryMiddleware()),
//	    toolbox.WithTool(toolbox.NewEchoTool()),
//	    toolbox.WithTool(toolbox.NewEvalTool()),
//	)
func NewManager(opts ...ManagerOption) (*Manager, error) {
	b := &managerBuilder{
		tools: make(map[string]ports.Tool),
	}
	for _, opt := range opts {
		opt(b)
	}
	if len(b.errors) > 0 {
		return nil, b.errors[0]
	}

	names := make([]string, 0, len(b.tools))
	for name := range b.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	schemas := make(map[string]string)
	for name, tool := range b.tools {
		modeler, ok := tool.(ports.ArgsModeler)
		if !ok {
			continue
		}
		s := jsonschema.Reflect(modeler.ArgsModel())
		data, err := json.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal args schema for %s: %w", name, err)
		}
		schemas[name] = string(data)
	}

	return &Manager{
		tools:      b.tools,
		schemas:    schemas,
		names:      names,
		middleware: b.middleware,
	}, nil
}

// Names returns a sorted list of all registered tool names.
func (m *Manager) Names() []string {
	result := make([]string, len(m.names))
	copy(result, m.names)
	return result
}

// Has reports whether a tool with the given name is registered.
func (m *Manager) Has(name string) bool {
	_, ok := m.tools[name]
	return ok
}

// SchemaFor returns the generated JSON Schema for a tool's arguments.
func (m *Manager) SchemaFor(name string) (string, bool) {
	s, ok := m.schemas[name]
	return s, ok
}

// Dispatch parses a tool request payload, executes the named tool, and
// returns a result envelope. Every failure mode produces an in-band JSON
// error envelope; Dispatch never returns invalid JSON.
func (m *Manager) Dispatch(ctx context.Context, payload []byte) []byte {
	var req wireformat.ToolRequestWire
	if err := json.Unmarshal(payload, &req); err != nil {
		return wireformat.ErrorResult("Invalid JSON: " + err.Error()).ToJSON()
	}
	if req.Tool == "" {
		return wireformat.ErrorResult("Missing tool name").ToJSON()
	}

	tool, ok := m.tools[req.Tool]
	if !ok {
		return wireformat.ErrorResult((&domainerrors.ToolNotFoundError{Tool: req.Tool}).Error()).ToJSON()
	}

	run := tool.Execute
	for i := len(m.middleware) - 1; i >= 0; i-- {
		run = m.middleware[i](run)
	}

	data, err := run(ctx, req.Arguments)
	if err != nil {
		return wireformat.ErrorResult((&domainerrors.ToolExecutionError{Tool: req.Tool, Err: err}).Error()).ToJSON()
	}
	return wireformat.OKResult(req.Tool+" completed", data).ToJSON()
}
