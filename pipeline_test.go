package toolgate_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armatrix/toolgate"
	"github.com/armatrix/toolgate/confirm"
	"github.com/armatrix/toolgate/hook"
	"github.com/armatrix/toolgate/permission"
	"github.com/armatrix/toolgate/session"
)

// executed tracks whether a tool's executor ran.
type executed struct{ ran bool }

func newFixture(t *testing.T, cfg *permission.Config, opts ...toolgate.PipelineOption) (*toolgate.Pipeline, map[string]*executed) {
	t.Helper()

	reg := toolgate.NewRegistry()
	ran := make(map[string]*executed)

	add := func(name string, kind toolgate.Kind, confirmFn func(json.RawMessage) *confirm.Details) {
		ex := &executed{}
		ran[name] = ex
		require.NoError(t, reg.Register(&toolgate.Descriptor{
			Name:        name,
			Kind:        kind,
			ConfirmFunc: confirmFn,
			AffectedPaths: func(raw json.RawMessage) []string {
				var in struct {
					FilePath string `json:"file_path"`
				}
				_ = json.Unmarshal(raw, &in)
				if in.FilePath == "" {
					return nil
				}
				return []string{in.FilePath}
			},
			Execute: func(context.Context, json.RawMessage, *toolgate.ExecContext) (*toolgate.Result, error) {
				ex.ran = true
				return toolgate.TextResult("ok"), nil
			},
		}))
	}

	add("Read", toolgate.KindReadOnly, nil)
	add("Write", toolgate.KindWrite, nil)
	add("Edit", toolgate.KindEdit, func(json.RawMessage) *confirm.Details {
		return &confirm.Details{Kind: confirm.KindEdit, Title: "Edit preview"}
	})
	add("Bash", toolgate.KindExecute, nil)

	engine, err := permission.NewEngine(cfg)
	require.NoError(t, err)
	return toolgate.NewPipeline(reg, engine, opts...), ran
}

func execCtx(mode permission.Mode, r confirm.Responder) *toolgate.ExecContext {
	return &toolgate.ExecContext{SessionID: "sess_test", Mode: mode, Responder: r}
}

func TestPipeline_AllowRuleExecutesWithoutConfirmation(t *testing.T) {
	responder := confirm.NewScriptedResponder()
	p, ran := newFixture(t, &permission.Config{Allow: []string{"Write"}})

	res := p.Execute(context.Background(), "Write", json.RawMessage(`{"file_path":"a.txt"}`), execCtx(permission.ModeDefault, responder))

	assert.True(t, res.Success)
	assert.True(t, ran["Write"].ran)
	assert.Zero(t, responder.Calls(), "allow-matched calls never reach the responder")
	assert.Equal(t, "allow", res.Metadata["decision"])
	assert.Equal(t, "Write", res.Metadata["matchedRule"])
}

func TestPipeline_DenyRuleBlocksAndNamesTheRule(t *testing.T) {
	responder := confirm.NewScriptedResponder()
	p, ran := newFixture(t, &permission.Config{
		Allow: []string{"Read"},
		Deny:  []string{"Read(file_path:**/.env)"},
	})

	res := p.Execute(context.Background(), "Read", json.RawMessage(`{"file_path":"src/.env"}`), execCtx(permission.ModeDefault, responder))

	require.NotNil(t, res.Error)
	assert.False(t, res.Success)
	assert.Equal(t, toolgate.ErrDenyBlocked, res.Error.Kind)
	assert.Contains(t, res.Error.Message, "Read(file_path:**/.env)", "failure names the blocking rule")
	assert.False(t, ran["Read"].ran)
	assert.Zero(t, responder.Calls())
}

func TestPipeline_AskRuleConfirmsOnce(t *testing.T) {
	t.Run("approved", func(t *testing.T) {
		responder := confirm.NewScriptedResponder(confirm.Response{Approved: true})
		p, ran := newFixture(t, &permission.Config{Ask: []string{"Bash"}})

		res := p.Execute(context.Background(), "Bash", nil, execCtx(permission.ModeDefault, responder))

		assert.True(t, res.Success)
		assert.True(t, ran["Bash"].ran)
		require.Equal(t, 1, responder.Calls(), "responder invoked exactly once")
		assert.Contains(t, responder.Requests()[0].Title, "Bash")
		assert.Equal(t, "ask", res.Metadata["decision"])
	})

	t.Run("rejected", func(t *testing.T) {
		responder := confirm.NewScriptedResponder(confirm.Response{Approved: false, Reason: "too risky"})
		p, ran := newFixture(t, &permission.Config{Ask: []string{"Bash"}})

		res := p.Execute(context.Background(), "Bash", nil, execCtx(permission.ModeDefault, responder))

		require.NotNil(t, res.Error)
		assert.Equal(t, toolgate.ErrRejected, res.Error.Kind)
		assert.Contains(t, res.Error.Message, "too risky", "operator reason is carried through")
		assert.False(t, ran["Bash"].ran, "rejected calls never touch the executor")
	})
}

func TestPipeline_DefaultModeReadOnlySkipsConfirmation(t *testing.T) {
	// Empty rule set: the policy defaults to ask, but read-only tools
	// are exempt under default mode.
	responder := confirm.NewScriptedResponder()
	p, ran := newFixture(t, nil)

	res := p.Execute(context.Background(), "Read", json.RawMessage(`{"file_path":"main.go"}`), execCtx(permission.ModeDefault, responder))

	assert.True(t, res.Success)
	assert.True(t, ran["Read"].ran)
	assert.Zero(t, responder.Calls())
}

func TestPipeline_DefaultModeMutatingAsksByDefault(t *testing.T) {
	responder := confirm.NewScriptedResponder(confirm.Response{Approved: true})
	p, _ := newFixture(t, nil)

	res := p.Execute(context.Background(), "Write", json.RawMessage(`{"file_path":"a.txt"}`), execCtx(permission.ModeDefault, responder))

	assert.True(t, res.Success)
	assert.Equal(t, 1, responder.Calls())
}

func TestPipeline_AutoEditSkipsEditConfirmation(t *testing.T) {
	// The Edit fixture's dynamic predicate would normally force a
	// confirmation; auto-edit mode suppresses it.
	responder := confirm.NewScriptedResponder()
	p, ran := newFixture(t, nil)

	res := p.Execute(context.Background(), "Edit", json.RawMessage(`{"file_path":"a.txt"}`), execCtx(permission.ModeAutoEdit, responder))

	assert.True(t, res.Success)
	assert.True(t, ran["Edit"].ran)
	assert.Zero(t, responder.Calls())
}

func TestPipeline_AutoEditStillConfirmsNonEditKinds(t *testing.T) {
	responder := confirm.NewScriptedResponder(confirm.Response{Approved: true})
	p, _ := newFixture(t, nil)

	p.Execute(context.Background(), "Bash", nil, execCtx(permission.ModeAutoEdit, responder))
	assert.Equal(t, 1, responder.Calls())
}

func TestPipeline_YoloBypassesDenyRules(t *testing.T) {
	responder := confirm.NewScriptedResponder()
	p, ran := newFixture(t, &permission.Config{Deny: []string{"Bash"}})

	res := p.Execute(context.Background(), "Bash", nil, execCtx(permission.ModeYolo, responder))

	assert.True(t, res.Success)
	assert.True(t, ran["Bash"].ran)
	assert.Zero(t, responder.Calls(), "yolo mode never confirms")
}

func TestPipeline_PlanModeForcesConfirmationForMutatingTools(t *testing.T) {
	responder := confirm.NewScriptedResponder(confirm.Response{Approved: false})
	p, ran := newFixture(t, &permission.Config{Allow: []string{"Write"}})

	res := p.Execute(context.Background(), "Write", json.RawMessage(`{"file_path":"a.txt"}`), execCtx(permission.ModePlan, responder))

	require.Equal(t, 1, responder.Calls())
	assert.Equal(t, confirm.KindPlanEnter, responder.Requests()[0].Kind, "surfaced as a plan violation")
	assert.False(t, ran["Write"].ran)
	assert.Equal(t, toolgate.ErrRejected, res.Error.Kind)
}

func TestPipeline_PlanModeLeavesReadOnlyAlone(t *testing.T) {
	responder := confirm.NewScriptedResponder()
	p, ran := newFixture(t, nil)

	res := p.Execute(context.Background(), "Read", json.RawMessage(`{"file_path":"main.go"}`), execCtx(permission.ModePlan, responder))

	assert.True(t, res.Success)
	assert.True(t, ran["Read"].ran)
	assert.Zero(t, responder.Calls())
}

func TestPipeline_PlanModeExemptsTheExitAction(t *testing.T) {
	reg := toolgate.NewRegistry()
	var ran bool
	require.NoError(t, reg.Register(&toolgate.Descriptor{
		Name:          "ExitPlanMode",
		Kind:          toolgate.KindExecute, // deliberately mutating to prove the exemption
		ExitsPlanMode: true,
		ConfirmFunc: func(json.RawMessage) *confirm.Details {
			return &confirm.Details{Kind: confirm.KindPlanExit, Title: "Exit plan mode?"}
		},
		Execute: func(context.Context, json.RawMessage, *toolgate.ExecContext) (*toolgate.Result, error) {
			ran = true
			return toolgate.TextResult("leaving plan mode"), nil
		},
	}))
	p := toolgate.NewPipeline(reg, nil)

	responder := confirm.NewScriptedResponder(confirm.Response{Approved: true})
	res := p.Execute(context.Background(), "ExitPlanMode", nil, execCtx(permission.ModePlan, responder))

	assert.True(t, res.Success)
	assert.True(t, ran)
	require.Equal(t, 1, responder.Calls())
	assert.Equal(t, confirm.KindPlanExit, responder.Requests()[0].Kind,
		"the exit action confirms on its own terms, not as a plan violation")
}

func TestPipeline_PredicateOverridesAllowRule(t *testing.T) {
	// An allow rule matches, but the tool's own predicate still forces
	// confirmation: predicate-forced confirmation overrides any
	// non-deny policy decision.
	responder := confirm.NewScriptedResponder(confirm.Response{Approved: true})
	p, ran := newFixture(t, &permission.Config{Allow: []string{"Edit"}})

	res := p.Execute(context.Background(), "Edit", json.RawMessage(`{"file_path":"a.txt"}`), execCtx(permission.ModeDefault, responder))

	assert.True(t, res.Success)
	assert.True(t, ran["Edit"].ran)
	require.Equal(t, 1, responder.Calls())
	assert.Equal(t, "Edit preview", responder.Requests()[0].Title)
}

func TestPipeline_UnknownToolFailsBeforePolicy(t *testing.T) {
	responder := confirm.NewScriptedResponder()
	// A deny-everything config must not even be consulted.
	p, _ := newFixture(t, &permission.Config{Deny: []string{"Ghost"}})

	res := p.Execute(context.Background(), "Ghost", nil, execCtx(permission.ModeDefault, responder))

	require.NotNil(t, res.Error)
	assert.Equal(t, toolgate.ErrNotFound, res.Error.Kind)
	assert.Zero(t, responder.Calls())
	assert.NotContains(t, res.Error.Message, "permission rule")
}

func TestPipeline_ValidationFailure(t *testing.T) {
	reg := toolgate.NewRegistry()
	require.NoError(t, reg.Register(&toolgate.Descriptor{
		Name: "Strict",
		Kind: toolgate.KindReadOnly,
		Validator: toolgate.ValidatorFunc(func(raw json.RawMessage) error {
			return errors.New("file_path is required")
		}),
		Execute: func(context.Context, json.RawMessage, *toolgate.ExecContext) (*toolgate.Result, error) {
			t.Fatal("executor must not run on validation failure")
			return nil, nil
		},
	}))
	p := toolgate.NewPipeline(reg, nil)

	res := p.Execute(context.Background(), "Strict", json.RawMessage(`{}`), execCtx(permission.ModeDefault, nil))

	require.NotNil(t, res.Error)
	assert.Equal(t, toolgate.ErrValidation, res.Error.Kind)
	assert.Contains(t, res.Error.Message, "file_path is required")
}

func TestPipeline_ExecutorFaultsAreCaptured(t *testing.T) {
	reg := toolgate.NewRegistry()
	require.NoError(t, reg.Register(&toolgate.Descriptor{
		Name: "Boom",
		Kind: toolgate.KindReadOnly,
		Execute: func(context.Context, json.RawMessage, *toolgate.ExecContext) (*toolgate.Result, error) {
			return nil, errors.New("disk on fire")
		},
	}))
	require.NoError(t, reg.Register(&toolgate.Descriptor{
		Name: "Panic",
		Kind: toolgate.KindReadOnly,
		Execute: func(context.Context, json.RawMessage, *toolgate.ExecContext) (*toolgate.Result, error) {
			panic("unexpected")
		},
	}))
	require.NoError(t, reg.Register(&toolgate.Descriptor{
		Name: "Nil",
		Kind: toolgate.KindReadOnly,
		Execute: func(context.Context, json.RawMessage, *toolgate.ExecContext) (*toolgate.Result, error) {
			return nil, nil
		},
	}))
	p := toolgate.NewPipeline(reg, nil)
	ec := execCtx(permission.ModeDefault, nil)

	res := p.Execute(context.Background(), "Boom", nil, ec)
	require.NotNil(t, res.Error)
	assert.Equal(t, toolgate.ErrExecution, res.Error.Kind)
	assert.Contains(t, res.Error.Message, "disk on fire")

	res = p.Execute(context.Background(), "Panic", nil, ec)
	require.NotNil(t, res.Error)
	assert.Equal(t, toolgate.ErrExecution, res.Error.Kind)
	assert.Contains(t, res.Error.Message, "panicked")

	res = p.Execute(context.Background(), "Nil", nil, ec)
	require.NotNil(t, res.Error)
	assert.Equal(t, toolgate.ErrExecution, res.Error.Kind)
}

func TestPipeline_FailedResultWithoutErrorIsNormalized(t *testing.T) {
	reg := toolgate.NewRegistry()
	require.NoError(t, reg.Register(&toolgate.Descriptor{
		Name: "Quiet",
		Kind: toolgate.KindReadOnly,
		Execute: func(context.Context, json.RawMessage, *toolgate.ExecContext) (*toolgate.Result, error) {
			// Domain failure with no structured error attached.
			return &toolgate.Result{Success: false, LLMContent: "domain failure"}, nil
		},
	}))
	p := toolgate.NewPipeline(reg, nil)

	res := p.Execute(context.Background(), "Quiet", nil, execCtx(permission.ModeDefault, nil))

	assert.False(t, res.Success)
	require.NotNil(t, res.Error, "every failed result carries a structured error")
	assert.Equal(t, toolgate.ErrExecution, res.Error.Kind)
	assert.Equal(t, "domain failure", res.Error.Message)
}

func TestPipeline_CancelledWhileAwaitingConfirmation(t *testing.T) {
	responder := confirm.NewChannelResponder()
	p, ran := newFixture(t, &permission.Config{Ask: []string{"Bash"}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *toolgate.Result, 1)
	go func() {
		done <- p.Execute(ctx, "Bash", nil, execCtx(permission.ModeDefault, responder))
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case res := <-done:
		require.NotNil(t, res.Error)
		assert.Equal(t, toolgate.ErrCancelled, res.Error.Kind, "cancellation is distinct from rejection")
		assert.False(t, ran["Bash"].ran)
	case <-time.After(time.Second):
		t.Fatal("pipeline did not honor cancellation while suspended")
	}
}

func TestPipeline_CancelledExecutor(t *testing.T) {
	reg := toolgate.NewRegistry()
	require.NoError(t, reg.Register(&toolgate.Descriptor{
		Name: "Slow",
		Kind: toolgate.KindReadOnly,
		Execute: func(ctx context.Context, _ json.RawMessage, _ *toolgate.ExecContext) (*toolgate.Result, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}))
	p := toolgate.NewPipeline(reg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	res := p.Execute(ctx, "Slow", nil, execCtx(permission.ModeDefault, nil))

	require.NotNil(t, res.Error)
	assert.Equal(t, toolgate.ErrCancelled, res.Error.Kind)
}

func TestPipeline_NoResponderRejectsAskCalls(t *testing.T) {
	p, ran := newFixture(t, &permission.Config{Ask: []string{"Bash"}})

	res := p.Execute(context.Background(), "Bash", nil, execCtx(permission.ModeDefault, nil))

	require.NotNil(t, res.Error)
	assert.Equal(t, toolgate.ErrRejected, res.Error.Kind)
	assert.False(t, ran["Bash"].ran)
}

func TestPipeline_PreToolUseHookBlocks(t *testing.T) {
	runner, err := hook.NewRunner([]hook.Matcher{{
		Event:   hook.PreToolUse,
		Pattern: "^Write$",
		Hooks: []hook.Func{func(context.Context, *hook.Input) (*hook.Result, error) {
			return &hook.Result{Block: true, Reason: "frozen by hook"}, nil
		}},
	}})
	require.NoError(t, err)

	p, ran := newFixture(t, &permission.Config{Allow: []string{"Write"}}, toolgate.WithHooks(runner))

	res := p.Execute(context.Background(), "Write", json.RawMessage(`{"file_path":"a.txt"}`), execCtx(permission.ModeDefault, nil))

	require.NotNil(t, res.Error)
	assert.Equal(t, toolgate.ErrDenyBlocked, res.Error.Kind)
	assert.Contains(t, res.Error.Message, "frozen by hook")
	assert.False(t, ran["Write"].ran)
}

func TestPipeline_PreToolUseHookRewritesInput(t *testing.T) {
	reg := toolgate.NewRegistry()
	var got string
	require.NoError(t, reg.Register(&toolgate.Descriptor{
		Name: "Echo",
		Kind: toolgate.KindReadOnly,
		Execute: func(_ context.Context, raw json.RawMessage, _ *toolgate.ExecContext) (*toolgate.Result, error) {
			got = string(raw)
			return toolgate.TextResult("ok"), nil
		},
	}))

	runner, err := hook.NewRunner([]hook.Matcher{{
		Event: hook.PreToolUse,
		Hooks: []hook.Func{func(context.Context, *hook.Input) (*hook.Result, error) {
			return &hook.Result{UpdatedInput: json.RawMessage(`{"rewritten":true}`)}, nil
		}},
	}})
	require.NoError(t, err)

	p := toolgate.NewPipeline(reg, nil, toolgate.WithHooks(runner))
	res := p.Execute(context.Background(), "Echo", json.RawMessage(`{}`), execCtx(permission.ModeDefault, nil))

	assert.True(t, res.Success)
	assert.JSONEq(t, `{"rewritten":true}`, got)
}

func TestPipeline_RecordsEveryCall(t *testing.T) {
	store := session.NewMemoryStore()
	responder := confirm.NewScriptedResponder(confirm.Response{Approved: true})
	p, _ := newFixture(t, &permission.Config{
		Allow: []string{"Read"},
		Deny:  []string{"Bash"},
	}, toolgate.WithRecorder(store))

	ec := execCtx(permission.ModeDefault, responder)
	p.Execute(context.Background(), "Read", json.RawMessage(`{"file_path":"a.go"}`), ec)
	p.Execute(context.Background(), "Bash", nil, ec)
	p.Execute(context.Background(), "Ghost", nil, ec)

	recs, err := store.List(context.Background(), "sess_test")
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, "Read", recs[0].Tool)
	assert.True(t, recs[0].Success)
	assert.Equal(t, "allow", recs[0].Decision)
	assert.Equal(t, "Read", recs[0].MatchedRule)

	assert.Equal(t, "Bash", recs[1].Tool)
	assert.False(t, recs[1].Success)
	assert.Equal(t, string(toolgate.ErrDenyBlocked), recs[1].ErrorKind)

	assert.Equal(t, string(toolgate.ErrNotFound), recs[2].ErrorKind)
}
