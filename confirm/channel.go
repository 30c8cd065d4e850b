package confirm

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"
)

// PendingRequest is a confirmation request waiting for an operator
// answer, as surfaced to the UI layer.
type PendingRequest struct {
	ID      string
	Details Details
}

// ChannelResponder bridges the pipeline's suspension point to an
// interactive UI loop. RequestConfirmation parks the calling goroutine
// on a per-request channel; the UI observes pending requests via OnRequest
// and answers them by ID with Respond. Multiple in-flight requests are
// independent, so concurrent tool calls never block each other.
type ChannelResponder struct {
	mu      sync.Mutex
	pending map[string]chan Response

	// OnRequest, if set, is invoked for every new request before the
	// caller suspends. Typically wired to a UI render queue.
	OnRequest func(PendingRequest)
}

var _ Responder = (*ChannelResponder)(nil)

// NewChannelResponder creates an empty ChannelResponder.
func NewChannelResponder() *ChannelResponder {
	return &ChannelResponder{pending: make(map[string]chan Response)}
}

// RequestConfirmation registers a pending request and blocks until
// Respond is called with its ID or ctx is cancelled.
func (c *ChannelResponder) RequestConfirmation(ctx context.Context, details Details) (Response, error) {
	id := ulid.Make().String()
	ch := make(chan Response, 1)

	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	if c.OnRequest != nil {
		c.OnRequest(PendingRequest{ID: id, Details: details})
	}

	select {
	case <-ctx.Done():
		return Response{}, ctx.Err()
	case resp := <-ch:
		return resp, nil
	}
}

// Respond delivers the operator's answer for a pending request. Answers
// for unknown or already-resolved IDs are dropped. Returns whether the
// request was still pending.
func (c *ChannelResponder) Respond(id string, resp Response) bool {
	c.mu.Lock()
	ch, ok := c.pending[id]
	c.mu.Unlock()

	if !ok {
		return false
	}
	// The buffer holds exactly one answer. A second Respond racing the
	// requester's cleanup finds it full and is dropped.
	select {
	case ch <- resp:
		return true
	default:
		return false
	}
}

// Pending returns the IDs of requests currently awaiting an answer.
func (c *ChannelResponder) Pending() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.pending))
	for id := range c.pending {
		ids = append(ids, id)
	}
	return ids
}
