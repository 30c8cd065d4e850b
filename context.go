package toolgate

import (
	"context"
	"encoding/json"
	"time"

	"github.com/armatrix/toolgate/confirm"
	"github.com/armatrix/toolgate/permission"
)

// ExecContext carries the per-call state for one tool execution. It is
// created by the caller for each invocation, passed by reference through
// the pipeline and into the executor, and discarded when the call
// completes. The pipeline never retains it.
//
// The permission mode lives here rather than in process-global state:
// changing the session's mode affects the next call's ExecContext, never
// a call already in flight.
type ExecContext struct {
	SessionID string
	WorkDir   string

	// Mode is the session's permission mode, read once per call.
	Mode permission.Mode

	// Responder answers confirmation requests. A call that needs
	// confirmation fails as rejected when no responder is configured.
	Responder confirm.Responder

	// OnProgress, if set, receives incremental output from long-running
	// executors.
	OnProgress func(text string)

	// Extra carries caller-specific values for tool executors.
	Extra map[string]any
}

// Progress forwards text to the progress callback when one is set.
func (ec *ExecContext) Progress(text string) {
	if ec != nil && ec.OnProgress != nil {
		ec.OnProgress(text)
	}
}

// CallRecord is the persisted trace of one pipeline call, written to a
// Recorder after the call settles. The pipeline only writes records; it
// never reads them back.
type CallRecord struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"sessionID"`
	Tool        string          `json:"tool"`
	Params      json.RawMessage `json:"params,omitempty"`
	Decision    string          `json:"decision"`
	MatchedRule string          `json:"matchedRule,omitempty"`
	Success     bool            `json:"success"`
	ErrorKind   string          `json:"errorKind,omitempty"`
	Output      string          `json:"output,omitempty"`
	Time        time.Time       `json:"time"`
}

// Recorder persists call records. Implementations live in the session
// package; the interface is defined here so the pipeline does not depend
// on any particular store.
type Recorder interface {
	Append(ctx context.Context, rec CallRecord) error
}
