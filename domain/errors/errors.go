// Package errors provides domain-specific error types for the Clara bridge.
// All error types support unwrapping via errors.As() and errors.Is().
package errors

import (
	"fmt"
)

// InvalidArgumentError indicates the UDF argument was missing or of the
// wrong kind. It is recovered locally at the bridge boundary and surfaced as
// an in-band JSON error string, never as an engine fault.
type InvalidArgumentError struct {
	Function string
	Reason   string
}

func (e *InvalidArgumentError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid argument for %s: %s", e.Function, e.Reason)
	}
	return fmt.Sprintf("invalid argument for %s", e.Function)
}

// ExternalError indicates the Evaluator violated its contract: it returned
// an error, a nil buffer, or an empty buffer.
type ExternalError struct {
	Err       error
	Evaluator string
}

func (e *ExternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("evaluator %s failed: %v", e.Evaluator, e.Err)
	}
	return fmt.Sprintf("evaluator %s returned no result", e.Evaluator)
}

func (e *ExternalError) Unwrap() error {
	return e.Err
}

// ToolNotFoundError indicates a dispatch request named an unregistered tool.
type ToolNotFoundError struct {
	Tool string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool not found: %s", e.Tool)
}

// ToolExecutionError wraps a failure inside a tool's Execute.
type ToolExecutionError struct {
	Err  error
	Tool string
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration load or validation failure.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// SessionLimitError indicates a session create would exceed a configured cap.
type SessionLimitError struct {
	Limit int
	Scope string // "user" or "global"
}

func (e *SessionLimitError) Error() string {
	return fmt.Sprintf("session limit reached (%s cap: %d)", e.Scope, e.Limit)
}

// SessionNotFoundError indicates a lookup for an unknown or expired session.
type SessionNotFoundError struct {
	ID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.ID)
}
