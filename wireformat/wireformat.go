// Package wireformat defines the JSON wire format exchanged between the host
// engine and the Evaluator, plus the OwnedBuffer type that models the
// single-owner handoff of Evaluator result strings. These types define the
// boundary contract and must remain stable and backward compatible.
package wireformat

import (
	"encoding/json"
)

// Status values carried in the "status" field of every result envelope.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ToolRequestWire is the JSON wire format of an evaluation request payload.
// The bridge treats the payload as opaque; this type is parsed only on the
// Evaluator side (toolbox dispatch).
type ToolRequestWire struct {
	// Tool names the tool to execute.
	Tool string `json:"tool"`

	// Arguments is the raw JSON argument object for the tool.
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ResultWire is the JSON result envelope returned to the host. Every result
// crossing the boundary carries at least "status" and "message".
type ResultWire struct {
	// Status is StatusOK or StatusError.
	Status string `json:"status"`

	// Message is a human-readable description of the outcome.
	Message string `json:"message"`

	// Data holds tool-specific result data.
	Data map[string]any `json:"data,omitempty"`
}

// OKResult creates a success envelope with the given message and data.
func OKResult(message string, data map[string]any) ResultWire {
	return ResultWire{
		Status:  StatusOK,
		Message: message,
		Data:    data,
	}
}

// ErrorResult creates an error envelope with the given message.
func ErrorResult(message string) ResultWire {
	return ResultWire{
		Status:  StatusError,
		Message: message,
	}
}

// ToJSON serializes the envelope to JSON bytes. Marshalling this type cannot
// fail for valid Data; if it somehow does, a minimal error envelope is
// returned so the caller always has valid JSON to hand back.
func (r ResultWire) ToJSON() []byte {
	data, err := json.Marshal(r)
	if err != nil {
		return []byte(`{"status":"error","message":"result serialization failed"}`)
	}
	return data
}

// IsOK reports whether the envelope carries a success status.
func (r ResultWire) IsOK() bool {
	return r.Status == StatusOK
}
