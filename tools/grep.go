package tools

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/armatrix/toolgate"
)

// GrepInput defines the input for the Grep tool.
type GrepInput struct {
	Pattern         string `json:"pattern" jsonschema:"required,description=The regex pattern to search for"`
	Path            string `json:"path,omitempty" jsonschema:"description=File or directory to search in"`
	OutputMode      string `json:"output_mode,omitempty" jsonschema:"description=Output mode: content or files_with_matches or count"`
	Glob            string `json:"glob,omitempty" jsonschema:"description=Glob pattern to filter files"`
	Context         *int   `json:"context,omitempty" jsonschema:"description=Lines of context around matches"`
	CaseInsensitive bool   `json:"case_insensitive,omitempty" jsonschema:"description=Case insensitive search"`
}

// GrepTool searches file contents using ripgrep.
type GrepTool struct{}

var _ toolgate.Tool[GrepInput] = (*GrepTool)(nil)
var _ toolgate.PathReporter[GrepInput] = (*GrepTool)(nil)

func (t *GrepTool) Name() string        { return "Grep" }
func (t *GrepTool) Kind() toolgate.Kind { return toolgate.KindReadOnly }
func (t *GrepTool) Description() string { return "Search file contents using regex patterns" }

func (t *GrepTool) AffectedPaths(input GrepInput) []string {
	if input.Path == "" {
		return nil
	}
	return []string{input.Path}
}

func (t *GrepTool) Execute(ctx context.Context, input GrepInput, ec *toolgate.ExecContext) (*toolgate.Result, error) {
	if input.Pattern == "" {
		return toolgate.ErrorResult("pattern is required"), nil
	}

	rgPath, err := exec.LookPath("rg")
	if err != nil {
		return toolgate.ErrorResult("ripgrep (rg) is not installed"), nil
	}

	cmd := exec.CommandContext(ctx, rgPath, buildRgArgs(input)...)
	if ec != nil && ec.WorkDir != "" {
		cmd.Dir = ec.WorkDir
	}

	output, err := cmd.CombinedOutput()
	text := string(output)

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			// rg exit code 1 = no matches, 2 = error
			if exitErr.ExitCode() == 1 {
				return toolgate.TextResult("No matches found."), nil
			}
			return toolgate.ErrorResult(fmt.Sprintf("rg error: %s", text)), nil
		}
		return toolgate.ErrorResult(fmt.Sprintf("failed to run rg: %s", err.Error())), nil
	}

	return toolgate.TextResult(truncate(text)), nil
}

func buildRgArgs(input GrepInput) []string {
	var args []string

	switch input.OutputMode {
	case "content":
		args = append(args, "-n")
	case "count":
		args = append(args, "-c")
	case "files_with_matches", "":
		args = append(args, "-l")
	}

	if input.CaseInsensitive {
		args = append(args, "-i")
	}
	if input.Glob != "" {
		args = append(args, "--glob", input.Glob)
	}
	if input.Context != nil && *input.Context > 0 {
		args = append(args, "-C", fmt.Sprintf("%d", *input.Context))
	}

	// -e keeps patterns starting with '-' from being parsed as flags.
	args = append(args, "-e", input.Pattern)
	if input.Path != "" {
		args = append(args, input.Path)
	}
	return args
}
