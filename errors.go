package toolgate

import "errors"

// ErrDuplicateTool is returned when registering a tool under a name
// that is already taken.
var ErrDuplicateTool = errors.New("toolgate: tool already registered")

// ErrorKind classifies a failed tool call. The agent loop uses the kind
// to decide whether a failure is worth reporting to the model as a
// refusal, retrying at the turn level, or dropping silently.
type ErrorKind string

const (
	// ErrValidation: parameters failed schema validation. Never retried.
	ErrValidation ErrorKind = "VALIDATION_ERROR"
	// ErrNotFound: the tool name is not registered. Never retried.
	ErrNotFound ErrorKind = "NOT_FOUND"
	// ErrDenyBlocked: a deny rule matched. Surfaced to the model as a
	// refusal so it can pick another action.
	ErrDenyBlocked ErrorKind = "DENY_BLOCKED"
	// ErrRejected: the operator declined the confirmation request.
	ErrRejected ErrorKind = "CONFIRMATION_REJECTED"
	// ErrCancelled: the execution context was cancelled while the call
	// was suspended or executing. Distinguished from rejection so the
	// caller does not treat it as a tool-level failure.
	ErrCancelled ErrorKind = "CANCELLED"
	// ErrExecution: the tool's executor failed or panicked.
	ErrExecution ErrorKind = "EXECUTION_ERROR"
)

// ToolError is the structured failure payload carried in a Result.
type ToolError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	return string(e.Kind) + ": " + e.Message
}
