package confirm

import (
	"context"
	"sync"
)

// ScriptedResponder answers requests from a fixed script and records
// every request it receives. It lets the pipeline's state machine be
// exercised without a real UI. Once the script is exhausted it rejects
// with an empty reason.
type ScriptedResponder struct {
	mu       sync.Mutex
	script   []Response
	next     int
	received []Details
}

var _ Responder = (*ScriptedResponder)(nil)

// NewScriptedResponder creates a responder that replays the given
// responses in order.
func NewScriptedResponder(script ...Response) *ScriptedResponder {
	return &ScriptedResponder{script: script}
}

// RequestConfirmation implements Responder.
func (s *ScriptedResponder) RequestConfirmation(ctx context.Context, details Details) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.received = append(s.received, details)
	if s.next >= len(s.script) {
		return Response{Approved: false}, nil
	}
	resp := s.script[s.next]
	s.next++
	return resp, nil
}

// Requests returns a copy of every Details value received so far.
func (s *ScriptedResponder) Requests() []Details {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Details, len(s.received))
	copy(out, s.received)
	return out
}

// Calls returns how many requests have been received.
func (s *ScriptedResponder) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.received)
}
