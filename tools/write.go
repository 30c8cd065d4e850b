package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/armatrix/toolgate"
	"github.com/armatrix/toolgate/confirm"
)

// WriteInput defines the input for the Write tool.
type WriteInput struct {
	FilePath string `json:"file_path" jsonschema:"required,description=The absolute path to the file to write"`
	Content  string `json:"content" jsonschema:"required,description=The content to write to the file"`
}

// WriteTool writes content to a file, creating parent directories if
// needed.
type WriteTool struct{}

var _ toolgate.Tool[WriteInput] = (*WriteTool)(nil)
var _ toolgate.Confirmer[WriteInput] = (*WriteTool)(nil)
var _ toolgate.PathReporter[WriteInput] = (*WriteTool)(nil)

func (t *WriteTool) Name() string        { return "Write" }
func (t *WriteTool) Kind() toolgate.Kind { return toolgate.KindWrite }
func (t *WriteTool) Description() string { return "Write a file to the local filesystem" }

func (t *WriteTool) AffectedPaths(input WriteInput) []string {
	return []string{input.FilePath}
}

// Confirm previews the write: a diff when overwriting, otherwise the
// new file's size.
func (t *WriteTool) Confirm(input WriteInput) *confirm.Details {
	if input.FilePath == "" {
		return nil
	}

	message := fmt.Sprintf("Create %s (%d bytes)", input.FilePath, len(input.Content))
	if existing, err := os.ReadFile(input.FilePath); err == nil {
		message = fmt.Sprintf("Overwrite %s:\n%s", input.FilePath, diffPreview(string(existing), input.Content))
	}

	return &confirm.Details{
		Kind:    confirm.KindEdit,
		Title:   fmt.Sprintf("Write %s", input.FilePath),
		Message: message,
	}
}

func (t *WriteTool) Execute(_ context.Context, input WriteInput, ec *toolgate.ExecContext) (*toolgate.Result, error) {
	if input.FilePath == "" {
		return toolgate.ErrorResult("file_path is required"), nil
	}

	resolved := resolvePath(ec, input.FilePath)

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return toolgate.ErrorResult(fmt.Sprintf("failed to create directory: %s", err.Error())), nil
	}

	if err := os.WriteFile(resolved, []byte(input.Content), 0o644); err != nil {
		return toolgate.ErrorResult(fmt.Sprintf("failed to write file: %s", err.Error())), nil
	}

	return toolgate.TextResult(fmt.Sprintf("Successfully wrote to %s", resolved)), nil
}
