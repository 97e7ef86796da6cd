package toolbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// ExecFunc is the executable core of a tool, the unit middleware wraps.
type ExecFunc func(ctx context.Context, args json.RawMessage) (map[string]any, error)

// Middleware wraps an ExecFunc to add cross-cutting behavior. Middleware
// executes in FIFO order (first registered wraps outermost).
type Middleware func(next ExecFunc) ExecFunc

// PanicRecoveryMiddleware returns a middleware that catches panics inside a
// tool and converts them into ordinary errors, so a misbehaving tool yields
// an error envelope instead of crashing the host.
func PanicRecoveryMiddleware() Middleware {
	return func(next ExecFunc) ExecFunc {
		return func(ctx context.Context, args json.RawMessage) (data map[string]any, err error) {
			defer func() {
				if r := recover(); r != nil {
					data = nil
					err = fmt.Errorf("panic: %v", r)
				}
			}()
			return next(ctx, args)
		}
	}
}

// LoggingMiddleware returns a middleware that logs tool executions with the
// given structured logger.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ExecFunc) ExecFunc {
		return func(ctx context.Context, args json.RawMessage) (map[string]any, error) {
			data, err := next(ctx, args)
			if err != nil {
				logger.ErrorContext(ctx, "toolbox: tool failed", "error", err)
			} else {
				logger.DebugContext(ctx, "toolbox: tool completed")
			}
			return data, err
		}
	}
}
