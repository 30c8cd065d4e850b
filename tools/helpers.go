package tools

import (
	"path/filepath"

	"github.com/armatrix/toolgate"
)

const maxOutputBytes = 30_000

// resolvePath anchors relative paths at the execution context's working
// directory.
func resolvePath(ec *toolgate.ExecContext, path string) string {
	if filepath.IsAbs(path) || ec == nil || ec.WorkDir == "" {
		return path
	}
	return filepath.Join(ec.WorkDir, path)
}

func truncate(s string) string {
	if len(s) > maxOutputBytes {
		return s[:maxOutputBytes] + "\n... [output truncated]"
	}
	return s
}
