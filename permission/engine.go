package permission

// Engine evaluates tool calls against an immutable rule snapshot.
//
// Cross-list priority is fixed: deny always outranks allow, and allow
// always outranks ask, regardless of how specific a competing rule is.
// Within a list the first structural match wins. Check has no side
// effects, so a single Engine is safe for any number of concurrent
// callers; configuration changes produce a new Engine rather than
// mutating one in place.
type Engine struct {
	deny  []Rule
	allow []Rule
	ask   []Rule
}

// NewEngine parses a config snapshot into an Engine. A nil config yields
// an engine with no rules, which answers Ask for everything.
func NewEngine(cfg *Config) (*Engine, error) {
	if cfg == nil {
		return &Engine{}, nil
	}
	deny, err := ParseRules(cfg.Deny)
	if err != nil {
		return nil, err
	}
	allow, err := ParseRules(cfg.Allow)
	if err != nil {
		return nil, err
	}
	ask, err := ParseRules(cfg.Ask)
	if err != nil {
		return nil, err
	}
	return &Engine{deny: deny, allow: allow, ask: ask}, nil
}

// Check returns the policy decision for a tool call and the rule that
// produced it. With no matching rule the default is Ask and the returned
// rule is the zero value.
func (e *Engine) Check(toolName string, affectedPaths []string) (Decision, Rule) {
	if r, ok := match(e.deny, toolName, affectedPaths); ok {
		return Deny, r
	}
	if r, ok := match(e.allow, toolName, affectedPaths); ok {
		return Allow, r
	}
	if r, ok := match(e.ask, toolName, affectedPaths); ok {
		return Ask, r
	}
	return Ask, Rule{}
}

func match(rules []Rule, toolName string, affectedPaths []string) (Rule, bool) {
	for _, r := range rules {
		if r.Matches(toolName, affectedPaths) {
			return r, true
		}
	}
	return Rule{}, false
}
