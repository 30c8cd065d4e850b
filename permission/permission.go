// Package permission decides whether a proposed tool call may run.
//
// Decisions come from two inputs: a declarative rule set evaluated by
// [Engine] (deny rules outrank allow rules, allow rules outrank ask
// rules), and a session-scoped [Mode] that reshapes how decisions
// translate into confirmation requirements. The engine itself is a pure
// function over an immutable config snapshot; mode overrides are applied
// by the execution pipeline, not here.
package permission

import "fmt"

// Decision represents the outcome of a permission check.
type Decision int

const (
	Allow Decision = iota // Tool execution is permitted
	Deny                  // Tool execution is blocked
	Ask                   // User should be prompted for confirmation
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	case Ask:
		return "ask"
	default:
		return "unknown"
	}
}

// Mode controls how policy decisions translate into confirmation
// requirements. It is session-scoped and read per tool call.
type Mode int

const (
	ModeDefault  Mode = iota // read-only=no confirmation, everything else honors the decision
	ModeAutoEdit             // edits skip confirmation, other kinds keep default behavior
	ModePlan                 // write/edit/execute forced to ask until plan mode is exited
	ModeYolo                 // all rules bypassed, nothing asks
)

// String returns the mode name as used in settings files.
func (m Mode) String() string {
	switch m {
	case ModeDefault:
		return "default"
	case ModeAutoEdit:
		return "acceptEdits"
	case ModePlan:
		return "plan"
	case ModeYolo:
		return "bypassPermissions"
	default:
		return "unknown"
	}
}

// ParseMode converts a settings string to a Mode constant.
// Recognized values: ""/"default", "acceptEdits", "plan",
// "bypassPermissions" (alias "yolo").
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "default":
		return ModeDefault, nil
	case "acceptEdits":
		return ModeAutoEdit, nil
	case "plan":
		return ModePlan, nil
	case "bypassPermissions", "yolo":
		return ModeYolo, nil
	default:
		return 0, fmt.Errorf("unknown permission mode: %q", s)
	}
}
