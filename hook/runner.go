package hook

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

const defaultTimeout = 30 * time.Second

// Runner executes hooks matched by event and tool name.
type Runner struct {
	matchers []matcherEntry
}

type matcherEntry struct {
	event   Event
	pattern *regexp.Regexp // nil = match all tools
	hooks   []Func
	timeout time.Duration
}

// NewRunner compiles Matcher definitions into a Runner. Returns an
// error if any regex pattern is invalid.
func NewRunner(matchers []Matcher) (*Runner, error) {
	entries := make([]matcherEntry, 0, len(matchers))
	for i, m := range matchers {
		entry := matcherEntry{
			event:   m.Event,
			hooks:   m.Hooks,
			timeout: m.Timeout,
		}
		if entry.timeout == 0 {
			entry.timeout = defaultTimeout
		}
		if m.Pattern != "" {
			re, err := regexp.Compile(m.Pattern)
			if err != nil {
				return nil, fmt.Errorf("matcher[%d]: invalid pattern %q: %w", i, m.Pattern, err)
			}
			entry.pattern = re
		}
		entries = append(entries, entry)
	}
	return &Runner{matchers: entries}, nil
}

// RunPreToolUse runs all matching PreToolUse hooks and returns the
// combined result. The first block wins; the last non-nil UpdatedInput
// wins.
func (r *Runner) RunPreToolUse(ctx context.Context, sessionID, toolName string, input json.RawMessage) (*Result, error) {
	return r.run(ctx, PreToolUse, toolName, &Input{
		SessionID: sessionID,
		Event:     PreToolUse,
		ToolName:  toolName,
		ToolInput: input,
	})
}

// RunPostToolUse runs all matching PostToolUse hooks.
func (r *Runner) RunPostToolUse(ctx context.Context, sessionID, toolName string, input json.RawMessage, output string) error {
	_, err := r.run(ctx, PostToolUse, toolName, &Input{
		SessionID:  sessionID,
		Event:      PostToolUse,
		ToolName:   toolName,
		ToolInput:  input,
		ToolOutput: output,
	})
	return err
}

// RunPostToolUseFailure runs all matching PostToolUseFailure hooks.
func (r *Runner) RunPostToolUseFailure(ctx context.Context, sessionID, toolName string, input json.RawMessage, toolErr error) error {
	_, err := r.run(ctx, PostToolUseFailure, toolName, &Input{
		SessionID: sessionID,
		Event:     PostToolUseFailure,
		ToolName:  toolName,
		ToolInput: input,
		ToolError: toolErr,
	})
	return err
}

func (r *Runner) run(ctx context.Context, event Event, toolName string, input *Input) (*Result, error) {
	var combined *Result

	for _, entry := range r.matchers {
		if entry.event != event {
			continue
		}
		if entry.pattern != nil && !entry.pattern.MatchString(toolName) {
			continue
		}

		tctx, cancel := context.WithTimeout(ctx, entry.timeout)
		res, err := runHooks(tctx, entry.hooks, input)
		cancel()

		if err != nil {
			return combined, err
		}
		if res == nil {
			continue
		}

		if combined == nil {
			combined = &Result{}
		}
		if res.Block && !combined.Block {
			combined.Block = true
			combined.Reason = res.Reason
		}
		if res.UpdatedInput != nil {
			combined.UpdatedInput = res.UpdatedInput
			input.ToolInput = res.UpdatedInput // later hooks see the rewrite
		}
	}

	return combined, nil
}

func runHooks(ctx context.Context, hooks []Func, input *Input) (*Result, error) {
	var combined *Result
	for _, fn := range hooks {
		if err := ctx.Err(); err != nil {
			return combined, err
		}
		res, err := fn(ctx, input)
		if err != nil {
			return combined, err
		}
		if res == nil {
			continue
		}
		if combined == nil {
			combined = &Result{}
		}
		if res.Block && !combined.Block {
			combined.Block = true
			combined.Reason = res.Reason
		}
		if res.UpdatedInput != nil {
			combined.UpdatedInput = res.UpdatedInput
		}
	}
	return combined, nil
}
