// Package toolgate is the authorization-and-execution runtime that sits
// between a language model and the local tools it wants to invoke.
//
// A model's tool calls are untrusted input: they can edit files and run
// commands. Every call therefore flows through a [Pipeline], which
// validates parameters, asks the [permission.Engine] for a policy
// decision, applies the session's permission mode, suspends on the
// operator's [confirm.Responder] when confirmation is required, and
// finally runs the tool's executor under cancellation control. The
// pipeline never panics or returns an error to its caller; every
// outcome is a [Result] suitable for feeding back to the model.
//
// # Quick Start
//
//	reg := toolgate.NewRegistry()
//	tools.RegisterAll(reg)
//
//	engine, _ := permission.NewEngine(cfg)
//	pipe := toolgate.NewPipeline(reg, engine)
//
//	res := pipe.Execute(ctx, "Read", params, &toolgate.ExecContext{
//	    SessionID: sid,
//	    Mode:      permission.ModeDefault,
//	    Responder: responder,
//	})
//
// # Sub-packages
//
//   - [permission] holds the rule language, policy engine, and modes.
//   - [confirm] defines the confirmation protocol and responders.
//   - [tools] provides the builtin tool set (Read, Write, Edit, Bash,
//     Glob, Grep, ExitPlanMode).
//   - [session] records an append-only log of tool calls and results.
//   - [hook] lets callers intercept tool execution.
package toolgate
