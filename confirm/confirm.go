// Package confirm defines the contract between the execution pipeline
// and the operator-facing component that approves or rejects tool calls.
//
// The pipeline never talks to a UI directly. When a call needs human
// sign-off it builds a [Details] value, hands it to the session's
// [Responder], and suspends that one call until a [Response] arrives or
// the call's context is cancelled. Anything that can answer a request
// plugs in behind the Responder interface, whether that is a terminal
// prompt, a scripted test double, or a remote operator.
package confirm

import (
	"context"
	"time"
)

// Kind classifies what the operator is being asked to approve.
type Kind string

const (
	KindEdit      Kind = "edit"          // file modification preview
	KindExecute   Kind = "execute"       // shell command preview
	KindPlanEnter Kind = "enterPlanMode" // plan-mode violation
	KindPlanExit  Kind = "exitPlanMode"  // leaving plan mode
	KindGeneric   Kind = "generic"
)

// Details describes a single confirmation request. Produced either by
// the policy engine (an ask decision) or by a tool's own confirmation
// predicate.
type Details struct {
	Kind     Kind           `json:"kind"`
	Title    string         `json:"title"`
	Message  string         `json:"message,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Response is the operator's answer to a confirmation request.
type Response struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason,omitempty"` // optional rejection reason
}

// Responder turns a confirmation request into an approve/reject answer.
// Implementations must honor ctx cancellation while waiting.
type Responder interface {
	RequestConfirmation(ctx context.Context, details Details) (Response, error)
}

// ResponderFunc adapts a plain function to the Responder interface.
type ResponderFunc func(ctx context.Context, details Details) (Response, error)

// RequestConfirmation implements Responder.
func (f ResponderFunc) RequestConfirmation(ctx context.Context, details Details) (Response, error) {
	return f(ctx, details)
}

// ApproveAll returns a responder that approves every request. Intended
// for tests and trusted automation.
func ApproveAll() Responder {
	return ResponderFunc(func(context.Context, Details) (Response, error) {
		return Response{Approved: true}, nil
	})
}

// RejectAll returns a responder that rejects every request with the
// given reason.
func RejectAll(reason string) Responder {
	return ResponderFunc(func(context.Context, Details) (Response, error) {
		return Response{Approved: false, Reason: reason}, nil
	})
}

// WithTimeout wraps a responder so each request carries its own
// deadline, derived from the call's context. The protocol itself has no
// built-in timeout; callers that need one apply this wrapper when they
// build the execution context.
func WithTimeout(r Responder, timeout time.Duration) Responder {
	return ResponderFunc(func(ctx context.Context, details Details) (Response, error) {
		tctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return r.RequestConfirmation(tctx, details)
	})
}
