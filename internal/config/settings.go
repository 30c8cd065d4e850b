// Package config handles settings loading for the tool runtime.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/armatrix/toolgate/permission"
)

// Settings holds merged runtime configuration from multiple sources.
// Later sources override earlier ones (user < project < local).
type Settings struct {
	PermissionMode string            `json:"permissionMode,omitempty"`
	Permissions    permission.Config `json:"permissions,omitempty"`
	DisabledTools  []string          `json:"disabledTools,omitempty"`
	LogLevel       string            `json:"logLevel,omitempty"`
	WorkDir        string            `json:"workDir,omitempty"`
}

// Mode resolves the configured permission mode, defaulting when unset
// or unrecognized.
func (s *Settings) Mode() permission.Mode {
	m, err := permission.ParseMode(s.PermissionMode)
	if err != nil {
		return permission.ModeDefault
	}
	return m
}

// ToolEnabled reports whether a tool name survives the disabled list.
func (s *Settings) ToolEnabled(name string) bool {
	for _, d := range s.DisabledTools {
		if d == name {
			return false
		}
	}
	return true
}

// LoadSettings merges settings from multiple JSON file paths. Later
// paths override earlier ones; permission rule lists concatenate
// instead, so a project file can add deny rules without erasing the
// user's. Missing or invalid files are silently skipped.
func LoadSettings(paths ...string) (*Settings, error) {
	merged := &Settings{}
	for _, path := range paths {
		s, err := loadSettingsFile(path)
		if err != nil {
			continue
		}
		mergeSettings(merged, s)
	}
	return merged, nil
}

// DefaultSettingsPaths returns the standard settings file search paths,
// lowest precedence first.
func DefaultSettingsPaths(projectDir string) []string {
	home, _ := os.UserHomeDir()
	var paths []string

	if home != "" {
		paths = append(paths, filepath.Join(home, ".toolgate", "settings.json"))
	}
	if projectDir != "" {
		paths = append(paths,
			filepath.Join(projectDir, ".toolgate", "settings.json"),
			filepath.Join(projectDir, ".toolgate", "settings.local.json"),
		)
	}
	return paths
}

func loadSettingsFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func mergeSettings(dst, src *Settings) {
	if src.PermissionMode != "" {
		dst.PermissionMode = src.PermissionMode
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.WorkDir != "" {
		dst.WorkDir = src.WorkDir
	}
	if len(src.DisabledTools) > 0 {
		dst.DisabledTools = src.DisabledTools
	}
	dst.Permissions.Allow = append(dst.Permissions.Allow, src.Permissions.Allow...)
	dst.Permissions.Ask = append(dst.Permissions.Ask, src.Permissions.Ask...)
	dst.Permissions.Deny = append(dst.Permissions.Deny, src.Permissions.Deny...)
}
