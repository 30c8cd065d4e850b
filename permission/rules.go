package permission

import (
	"fmt"
	"strings"

	"github.com/armatrix/toolgate/internal/glob"
)

// Rule is a parsed permission rule. The string form is either a bare
// tool name ("Bash") or a tool name with a parameter filter
// ("Read(file_path:**/.env)"). A rule without a filter matches every
// invocation of that tool.
type Rule struct {
	ToolName string // exact, case-sensitive tool name
	ParamKey string // parameter the glob applies to, empty if none
	Pattern  string // glob pattern, empty if none
	raw      string
}

// ParseRule parses a rule string of the form `Tool` or `Tool(key:glob)`.
func ParseRule(s string) (Rule, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Rule{}, fmt.Errorf("empty permission rule")
	}

	open := strings.IndexByte(s, '(')
	if open < 0 {
		if strings.ContainsAny(s, "):") {
			return Rule{}, fmt.Errorf("malformed permission rule %q", s)
		}
		return Rule{ToolName: s, raw: s}, nil
	}

	if open == 0 || !strings.HasSuffix(s, ")") {
		return Rule{}, fmt.Errorf("malformed permission rule %q", s)
	}

	name := s[:open]
	filter := s[open+1 : len(s)-1]

	// The glob pattern may itself contain ':' (rare, but legal in file
	// names), so split on the first one only.
	key, pattern, ok := strings.Cut(filter, ":")
	if !ok || key == "" || pattern == "" {
		return Rule{}, fmt.Errorf("permission rule %q: filter must be key:glob", s)
	}
	if !glob.Valid(pattern) {
		return Rule{}, fmt.Errorf("permission rule %q: invalid glob %q", s, pattern)
	}

	return Rule{ToolName: name, ParamKey: key, Pattern: pattern, raw: s}, nil
}

// ParseRules parses a list of rule strings, rejecting the whole list on
// the first malformed entry.
func ParseRules(patterns []string) ([]Rule, error) {
	rules := make([]Rule, 0, len(patterns))
	for _, p := range patterns {
		r, err := ParseRule(p)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// String returns the original string form of the rule.
func (r Rule) String() string {
	if r.raw != "" {
		return r.raw
	}
	if r.ParamKey == "" {
		return r.ToolName
	}
	return fmt.Sprintf("%s(%s:%s)", r.ToolName, r.ParamKey, r.Pattern)
}

// Matches reports whether the rule applies to an invocation of toolName
// touching the given paths. A rule with a filter requires at least one
// affected path to match its glob.
func (r Rule) Matches(toolName string, affectedPaths []string) bool {
	if r.ToolName != toolName {
		return false
	}
	if r.Pattern == "" {
		return true
	}
	return glob.MatchAny(r.Pattern, affectedPaths)
}
