package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armatrix/toolgate/permission"
)

func writeSettings(t *testing.T, dir, name string, s Settings) string {
	t.Helper()
	path := filepath.Join(dir, name)
	data, err := json.Marshal(s)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadSettings_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeSettings(t, dir, "settings.json", Settings{
		PermissionMode: "acceptEdits",
		LogLevel:       "debug",
		Permissions:    permission.Config{Allow: []string{"Read"}},
	})

	result, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "acceptEdits", result.PermissionMode)
	assert.Equal(t, "debug", result.LogLevel)
	assert.Equal(t, []string{"Read"}, result.Permissions.Allow)
}

func TestLoadSettings_MergeOrder(t *testing.T) {
	dir := t.TempDir()

	userPath := writeSettings(t, dir, "user.json", Settings{
		PermissionMode: "default",
		Permissions:    permission.Config{Allow: []string{"Read"}},
	})
	projPath := writeSettings(t, dir, "project.json", Settings{
		PermissionMode: "plan",
		Permissions:    permission.Config{Deny: []string{"Bash(command:*)"}},
	})

	result, err := LoadSettings(userPath, projPath)
	require.NoError(t, err)

	assert.Equal(t, "plan", result.PermissionMode, "project should override user")
	assert.Equal(t, []string{"Read"}, result.Permissions.Allow, "user rules survive")
	assert.Equal(t, []string{"Bash(command:*)"}, result.Permissions.Deny, "rule lists concatenate")
}

func TestLoadSettings_MissingFileSkipped(t *testing.T) {
	result, err := LoadSettings("/nonexistent/path.json")
	require.NoError(t, err)
	assert.Equal(t, "", result.PermissionMode)
}

func TestLoadSettings_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	good := writeSettings(t, dir, "good.json", Settings{LogLevel: "warn"})

	result, err := LoadSettings(path, good)
	require.NoError(t, err)
	assert.Equal(t, "warn", result.LogLevel, "invalid files are skipped, not fatal")
}

func TestSettings_Mode(t *testing.T) {
	assert.Equal(t, permission.ModeAutoEdit, (&Settings{PermissionMode: "acceptEdits"}).Mode())
	assert.Equal(t, permission.ModeDefault, (&Settings{}).Mode())
	assert.Equal(t, permission.ModeDefault, (&Settings{PermissionMode: "bogus"}).Mode())
}

func TestSettings_ToolEnabled(t *testing.T) {
	s := &Settings{DisabledTools: []string{"Bash"}}
	assert.False(t, s.ToolEnabled("Bash"))
	assert.True(t, s.ToolEnabled("Read"))
}

func TestDefaultSettingsPaths(t *testing.T) {
	paths := DefaultSettingsPaths("/proj")
	require.NotEmpty(t, paths)
	assert.Contains(t, paths[len(paths)-1], filepath.Join(".toolgate", "settings.local.json"))
}
