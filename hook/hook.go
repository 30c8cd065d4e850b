// Package hook lets callers intercept tool execution.
//
// The pipeline fires [PreToolUse] before a tool's executor runs (after
// authorization), [PostToolUse] after a successful run, and
// [PostToolUseFailure] after a failed one. A [Matcher] binds a set of
// [Func] callbacks to an event and an optional tool-name regex.
package hook

import (
	"context"
	"encoding/json"
	"time"
)

// Event identifies when a hook fires.
type Event string

const (
	PreToolUse         Event = "PreToolUse"
	PostToolUse        Event = "PostToolUse"
	PostToolUseFailure Event = "PostToolUseFailure"
)

// Input is passed to hook functions.
type Input struct {
	SessionID string
	Event     Event
	ToolName  string
	ToolInput json.RawMessage

	ToolOutput string // PostToolUse
	ToolError  error  // PostToolUseFailure
}

// Result is returned by hook functions. A zero value means "no action".
type Result struct {
	Block        bool            // blocks the tool from executing (PreToolUse only)
	Reason       string          // human-readable reason for blocking
	UpdatedInput json.RawMessage // if non-nil, replaces the tool input (PreToolUse only)
}

// Func is the signature for hook callbacks.
type Func func(ctx context.Context, input *Input) (*Result, error)

// Matcher defines which events a set of hooks fires for.
type Matcher struct {
	Event   Event         // which event to match
	Pattern string        // regex for the tool name (empty = match all)
	Hooks   []Func        // functions to call, in order
	Timeout time.Duration // max time for all hooks in this matcher (0 = 30s default)
}
