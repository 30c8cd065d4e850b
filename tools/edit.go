package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/armatrix/toolgate"
	"github.com/armatrix/toolgate/confirm"
)

// EditInput defines the input for the Edit tool.
type EditInput struct {
	FilePath   string `json:"file_path" jsonschema:"required,description=The absolute path to the file to modify"`
	OldString  string `json:"old_string" jsonschema:"required,description=The text to replace"`
	NewString  string `json:"new_string" jsonschema:"required,description=The replacement text"`
	ReplaceAll bool   `json:"replace_all,omitempty" jsonschema:"description=Replace all occurrences"`
}

// EditTool performs exact string replacements in files.
type EditTool struct{}

var _ toolgate.Tool[EditInput] = (*EditTool)(nil)
var _ toolgate.Confirmer[EditInput] = (*EditTool)(nil)
var _ toolgate.PathReporter[EditInput] = (*EditTool)(nil)

func (t *EditTool) Name() string        { return "Edit" }
func (t *EditTool) Kind() toolgate.Kind { return toolgate.KindEdit }
func (t *EditTool) Description() string { return "Perform exact string replacements in files" }

func (t *EditTool) AffectedPaths(input EditInput) []string {
	return []string{input.FilePath}
}

// Confirm builds a diff preview of the replacement so the operator sees
// exactly what would change.
func (t *EditTool) Confirm(input EditInput) *confirm.Details {
	if input.FilePath == "" || input.OldString == input.NewString {
		return nil
	}

	message := fmt.Sprintf("Replace %q with %q", input.OldString, input.NewString)
	if data, err := os.ReadFile(input.FilePath); err == nil {
		before := string(data)
		after, ok := applyEdit(before, input)
		if ok {
			message = diffPreview(before, after)
		}
	}

	return &confirm.Details{
		Kind:    confirm.KindEdit,
		Title:   fmt.Sprintf("Edit %s", input.FilePath),
		Message: message,
	}
}

func (t *EditTool) Execute(_ context.Context, input EditInput, ec *toolgate.ExecContext) (*toolgate.Result, error) {
	if input.FilePath == "" {
		return toolgate.ErrorResult("file_path is required"), nil
	}
	if input.OldString == input.NewString {
		return toolgate.ErrorResult("old_string and new_string must be different"), nil
	}

	resolved := resolvePath(ec, input.FilePath)
	data, err := os.ReadFile(resolved)
	if err != nil {
		return toolgate.ErrorResult(fmt.Sprintf("failed to read file: %s", err.Error())), nil
	}

	content := string(data)
	count := strings.Count(content, input.OldString)

	if count == 0 {
		return toolgate.ErrorResult("old_string not found in file"), nil
	}

	if !input.ReplaceAll && count > 1 {
		return toolgate.ErrorResult(fmt.Sprintf(
			"old_string appears %d times in file; use replace_all=true to replace all occurrences, or provide more context to make it unique",
			count,
		)), nil
	}

	newContent, _ := applyEdit(content, input)
	if err := os.WriteFile(resolved, []byte(newContent), 0o644); err != nil {
		return toolgate.ErrorResult(fmt.Sprintf("failed to write file: %s", err.Error())), nil
	}

	replaced := 1
	if input.ReplaceAll {
		replaced = count
	}
	return toolgate.TextResult(fmt.Sprintf("Successfully replaced %d occurrence(s) in %s", replaced, resolved)), nil
}

// applyEdit performs the replacement without touching disk. ok is false
// when old_string does not occur.
func applyEdit(content string, input EditInput) (string, bool) {
	if !strings.Contains(content, input.OldString) {
		return content, false
	}
	if input.ReplaceAll {
		return strings.ReplaceAll(content, input.OldString, input.NewString), true
	}
	return strings.Replace(content, input.OldString, input.NewString, 1), true
}
