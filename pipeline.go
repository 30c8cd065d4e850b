package toolgate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/armatrix/toolgate/confirm"
	"github.com/armatrix/toolgate/hook"
	"github.com/armatrix/toolgate/internal/logging"
	"github.com/armatrix/toolgate/permission"
)

// Pipeline drives a tool call through validation, authorization,
// confirmation, and execution. Each call is independent: the pipeline
// holds only the read-only registry, the immutable policy engine
// snapshot, and optional hooks/recorder, so concurrent calls need no
// serialization.
type Pipeline struct {
	registry *Registry
	engine   *permission.Engine
	hooks    *hook.Runner
	recorder Recorder
	log      zerolog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithHooks wires a hook runner around tool execution.
func WithHooks(r *hook.Runner) PipelineOption {
	return func(p *Pipeline) { p.hooks = r }
}

// WithRecorder wires a call-record store. Every settled call appends one
// record.
func WithRecorder(rec Recorder) PipelineOption {
	return func(p *Pipeline) { p.recorder = rec }
}

// WithLogger sets the pipeline's structured logger.
func WithLogger(log zerolog.Logger) PipelineOption {
	return func(p *Pipeline) { p.log = log }
}

// NewPipeline creates a Pipeline. A nil engine behaves like an empty
// rule set (every check answers ask).
func NewPipeline(registry *Registry, engine *permission.Engine, opts ...PipelineOption) *Pipeline {
	if engine == nil {
		engine, _ = permission.NewEngine(nil)
	}
	p := &Pipeline{
		registry: registry,
		engine:   engine,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Execute runs one tool call to completion. It never panics and never
// returns an error: every failure mode is encoded in the Result.
func (p *Pipeline) Execute(ctx context.Context, toolName string, params json.RawMessage, ec *ExecContext) *Result {
	if ec == nil {
		ec = &ExecContext{}
	}

	callID := NewID(PrefixCall)
	log := p.log.With().
		Str("call", callID).
		Str("tool", toolName).
		Str("session", ec.SessionID).
		Logger()

	res, params := p.run(ctx, log, toolName, params, ec)

	if res.Success {
		log.Debug().Msg("tool call completed")
		if p.hooks != nil {
			if err := p.hooks.RunPostToolUse(ctx, ec.SessionID, toolName, params, res.LLMContent); err != nil {
				log.Warn().Err(err).Msg("post-tool hook failed")
			}
		}
	} else {
		log.Info().Str("kind", string(res.Error.Kind)).Str("reason", res.Error.Message).Msg("tool call failed")
		if p.hooks != nil {
			if err := p.hooks.RunPostToolUseFailure(ctx, ec.SessionID, toolName, params, res.Error); err != nil {
				log.Warn().Err(err).Msg("post-tool failure hook failed")
			}
		}
	}

	p.record(ctx, callID, toolName, params, ec, res)
	return res
}

// run is the state machine: Validating -> PolicyCheck -> {Blocked |
// AwaitingConfirmation -> {Rejected | Executing} | Executing} ->
// {Completed | Failed}. It returns the final params so the caller can
// hand hook-rewritten input to the post hooks and recorder.
func (p *Pipeline) run(ctx context.Context, log zerolog.Logger, toolName string, params json.RawMessage, ec *ExecContext) (*Result, json.RawMessage) {
	// Unknown tools fail before any policy check.
	desc, ok := p.registry.Get(toolName)
	if !ok {
		return failure(ErrNotFound, fmt.Sprintf("tool %q is not registered", toolName)), params
	}

	if err := ctx.Err(); err != nil {
		return failure(ErrCancelled, "tool call cancelled"), params
	}

	// Validating.
	if desc.Validator != nil {
		if err := desc.Validator.Validate(params); err != nil {
			return failure(ErrValidation, fmt.Sprintf("invalid parameters for %s: %s", desc.Name, err.Error())), params
		}
	}

	// Pre-execution hooks may block the call or rewrite its input.
	if p.hooks != nil {
		hres, err := p.hooks.RunPreToolUse(ctx, ec.SessionID, toolName, params)
		if err != nil {
			if isCancellation(ctx, err) {
				return failure(ErrCancelled, "tool call cancelled"), params
			}
			return failure(ErrExecution, fmt.Sprintf("pre-tool hook failed: %s", err.Error())), params
		}
		if hres != nil {
			if hres.Block {
				reason := hres.Reason
				if reason == "" {
					reason = "blocked by pre-tool hook"
				}
				return failure(ErrDenyBlocked, reason), params
			}
			if hres.UpdatedInput != nil {
				params = hres.UpdatedInput
				if desc.Validator != nil {
					if err := desc.Validator.Validate(params); err != nil {
						return failure(ErrValidation, fmt.Sprintf("hook-rewritten parameters for %s: %s", desc.Name, err.Error())), params
					}
				}
			}
		}
	}

	// PolicyCheck.
	var paths []string
	if desc.AffectedPaths != nil {
		paths = desc.AffectedPaths(params)
	}
	decision, rule := p.engine.Check(toolName, paths)
	log.Debug().
		Stringer("decision", decision).
		Stringer("mode", ec.Mode).
		Str("rule", rule.String()).
		Msg("policy check")

	if decision == permission.Deny && ec.Mode != permission.ModeYolo {
		// Blocked. The message names the rule so the model can pick a
		// different action.
		return p.enrich(
			failure(ErrDenyBlocked, fmt.Sprintf("tool call blocked by permission rule: %s", rule)),
			permission.Deny, rule,
		), params
	}

	needsConfirm, details := p.confirmation(desc, decision, ec.Mode, params)

	effective := permission.Allow
	if needsConfirm {
		effective = permission.Ask

		// AwaitingConfirmation: suspend this call until the operator
		// answers or the context is cancelled.
		if ec.Responder == nil {
			return p.enrich(failure(ErrRejected, "confirmation required but no responder is configured"), effective, rule), params
		}

		resp, err := ec.Responder.RequestConfirmation(ctx, *details)
		if err != nil {
			if isCancellation(ctx, err) {
				return p.enrich(failure(ErrCancelled, "tool call cancelled while awaiting confirmation"), effective, rule), params
			}
			return p.enrich(failure(ErrRejected, fmt.Sprintf("confirmation failed: %s", err.Error())), effective, rule), params
		}
		if !resp.Approved {
			// Rejected: the executor is never touched.
			reason := resp.Reason
			if reason == "" {
				reason = "permission rejected by operator"
			}
			return p.enrich(failure(ErrRejected, reason), effective, rule), params
		}
	}

	// Executing.
	if err := ctx.Err(); err != nil {
		return p.enrich(failure(ErrCancelled, "tool call cancelled"), effective, rule), params
	}
	return p.enrich(p.runExecutor(ctx, desc, params, ec), effective, rule), params
}

// confirmation computes whether the call must suspend for operator
// sign-off, combining the policy decision, the session mode, and the
// tool's own confirmation predicate. The predicate overrides any
// non-deny policy decision.
func (p *Pipeline) confirmation(desc *Descriptor, decision permission.Decision, mode permission.Mode, params json.RawMessage) (bool, *confirm.Details) {
	if mode == permission.ModeYolo {
		return false, nil
	}

	// Plan mode forces every mutating call to ask, surfaced as a plan
	// violation. Only the dedicated mode-exit action is exempt.
	if mode == permission.ModePlan && desc.Kind.Mutating() && !desc.ExitsPlanMode {
		return true, &confirm.Details{
			Kind:    confirm.KindPlanEnter,
			Title:   fmt.Sprintf("%s requires leaving plan mode", desc.Name),
			Message: fmt.Sprintf("Plan mode is active; %s would %s. Approve to run it anyway.", desc.Name, desc.Kind),
		}
	}

	// Auto-edit skips confirmation for edits entirely, whether the ask
	// came from policy or from the tool's predicate.
	if mode == permission.ModeAutoEdit && desc.Kind == KindEdit {
		return false, nil
	}

	if desc.ConfirmFunc != nil {
		if det := desc.ConfirmFunc(params); det != nil {
			return true, det
		}
	}

	// Read-only tools are exempt from ask decisions; deny rules were
	// already handled.
	if decision == permission.Ask && desc.Kind.Mutating() {
		return true, &confirm.Details{
			Kind:    confirmKind(desc.Kind),
			Title:   fmt.Sprintf("Allow %s?", desc.Name),
			Message: fmt.Sprintf("The model wants to run %s (%s).", desc.Name, desc.Kind),
		}
	}

	return false, nil
}

func confirmKind(k Kind) confirm.Kind {
	switch k {
	case KindEdit, KindWrite:
		return confirm.KindEdit
	case KindExecute:
		return confirm.KindExecute
	default:
		return confirm.KindGeneric
	}
}

// runExecutor invokes the tool's executor, converting faults and panics
// into failed results. Nothing the executor does escapes the pipeline.
func (p *Pipeline) runExecutor(ctx context.Context, desc *Descriptor, params json.RawMessage, ec *ExecContext) (res *Result) {
	defer func() {
		if r := recover(); r != nil {
			res = failure(ErrExecution, fmt.Sprintf("tool %s panicked: %v", desc.Name, r))
		}
	}()

	out, err := desc.Execute(ctx, params, ec)
	if err != nil {
		if isCancellation(ctx, err) {
			return failure(ErrCancelled, fmt.Sprintf("tool %s cancelled", desc.Name))
		}
		return failure(ErrExecution, fmt.Sprintf("tool %s failed: %s", desc.Name, err.Error()))
	}
	if out == nil {
		return failure(ErrExecution, fmt.Sprintf("tool %s returned no result", desc.Name))
	}
	if !out.Success && out.Error == nil {
		// Tools may report a domain failure without a structured error;
		// downstream consumers rely on Error being set on every failure.
		msg := out.LLMContent
		if msg == "" {
			msg = fmt.Sprintf("tool %s failed", desc.Name)
		}
		out.Error = &ToolError{Kind: ErrExecution, Message: msg}
	}
	return out
}

// enrich attaches pipeline metadata to a settled result.
func (p *Pipeline) enrich(res *Result, effective permission.Decision, rule permission.Rule) *Result {
	res.setMeta("decision", effective.String())
	if r := rule.String(); r != "" {
		res.setMeta("matchedRule", r)
	}
	return res
}

func (p *Pipeline) record(ctx context.Context, callID, toolName string, params json.RawMessage, ec *ExecContext, res *Result) {
	if p.recorder == nil {
		return
	}

	rec := CallRecord{
		ID:        callID,
		SessionID: ec.SessionID,
		Tool:      toolName,
		Params:    params,
		Success:   res.Success,
		Output:    res.LLMContent,
		Time:      time.Now().UTC(),
	}
	if d, ok := res.Metadata["decision"].(string); ok {
		rec.Decision = d
	}
	if r, ok := res.Metadata["matchedRule"].(string); ok {
		rec.MatchedRule = r
	}
	if res.Error != nil {
		rec.ErrorKind = string(res.Error.Kind)
	}

	// Recording is best-effort; a failing store must not fail the call.
	if err := p.recorder.Append(ctx, rec); err != nil {
		p.log.Warn().Err(err).Str("call", callID).Msg("append call record failed")
	}
}

func isCancellation(ctx context.Context, err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		ctx.Err() != nil
}
