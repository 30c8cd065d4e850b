package permission

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// Config is the persisted rule configuration: three ordered lists of raw
// rule strings. It is loaded once per session and replaced wholesale on
// update; the Engine holds a parsed snapshot and is rebuilt when the
// config changes.
type Config struct {
	Allow []string `json:"allow,omitempty"`
	Ask   []string `json:"ask,omitempty"`
	Deny  []string `json:"deny,omitempty"`
}

// List identifies one of the three rule lists in a Config.
type List string

const (
	ListAllow List = "allow"
	ListAsk   List = "ask"
	ListDeny  List = "deny"
)

// LoadConfig reads a permission config from a JSON file. A missing file
// yields an empty config, not an error.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read permission config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse permission config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the config to a JSON file, creating parent directories as
// needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// AppendRule adds a rule pattern to the named list, dropping it if an
// identical entry already exists. The pattern is validated before it is
// accepted. Returns true if the config changed.
func (c *Config) AppendRule(list List, pattern string) (bool, error) {
	if _, err := ParseRule(pattern); err != nil {
		return false, err
	}

	target, err := c.list(list)
	if err != nil {
		return false, err
	}
	if slices.Contains(*target, pattern) {
		return false, nil
	}
	*target = append(*target, pattern)
	return true, nil
}

// AppendRuleAndSave appends a rule pattern to the named list and, when
// the config changed, persists the de-duplicated state back to path.
// This is the operation behind "always allow": the session keeps using
// its current engine until it rebuilds one from the saved config.
func (c *Config) AppendRuleAndSave(list List, pattern, path string) (bool, error) {
	changed, err := c.AppendRule(list, pattern)
	if err != nil || !changed {
		return changed, err
	}
	return true, c.Save(path)
}

func (c *Config) list(l List) (*[]string, error) {
	switch l {
	case ListAllow:
		return &c.Allow, nil
	case ListAsk:
		return &c.Ask, nil
	case ListDeny:
		return &c.Deny, nil
	default:
		return nil, fmt.Errorf("unknown rule list: %q", l)
	}
}
