package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/creack/pty"

	"github.com/armatrix/toolgate"
	"github.com/armatrix/toolgate/confirm"
)

const (
	defaultBashTimeoutMs = 120_000
	maxBashTimeoutMs     = 600_000
)

// BashInput defines the input for the Bash tool.
type BashInput struct {
	Command     string `json:"command" jsonschema:"required,description=The command to execute"`
	Description string `json:"description,omitempty" jsonschema:"description=Description of what this command does"`
	Timeout     *int   `json:"timeout,omitempty" jsonschema:"description=Timeout in milliseconds (max 600000)"`
}

// BashTool executes shell commands.
type BashTool struct{}

var _ toolgate.Tool[BashInput] = (*BashTool)(nil)
var _ toolgate.Confirmer[BashInput] = (*BashTool)(nil)

func (t *BashTool) Name() string        { return "Bash" }
func (t *BashTool) Kind() toolgate.Kind { return toolgate.KindExecute }
func (t *BashTool) Description() string { return "Execute a bash command" }

// Confirm previews the exact command line the operator would approve.
func (t *BashTool) Confirm(input BashInput) *confirm.Details {
	if input.Command == "" {
		return nil
	}
	message := input.Command
	if input.Description != "" {
		message = fmt.Sprintf("%s\n\n%s", input.Command, input.Description)
	}
	return &confirm.Details{
		Kind:    confirm.KindExecute,
		Title:   "Run command",
		Message: message,
	}
}

func (t *BashTool) Execute(ctx context.Context, input BashInput, ec *toolgate.ExecContext) (*toolgate.Result, error) {
	if input.Command == "" {
		return toolgate.ErrorResult("command is required"), nil
	}

	timeoutMs := defaultBashTimeoutMs
	if input.Timeout != nil {
		timeoutMs = *input.Timeout
		if timeoutMs <= 0 {
			timeoutMs = defaultBashTimeoutMs
		}
		if timeoutMs > maxBashTimeoutMs {
			timeoutMs = maxBashTimeoutMs
		}
	}

	cmdCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, "bash", "-c", input.Command)
	if ec != nil && ec.WorkDir != "" {
		cmd.Dir = ec.WorkDir
	}

	// PTY gives more realistic output capture for interactive-ish tools.
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return t.executeWithoutPTY(cmdCtx, cmd.Dir, input, timeoutMs)
	}
	defer ptmx.Close()

	var buf bytes.Buffer
	chunk := make([]byte, 4096)
	for {
		n, readErr := ptmx.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			ec.Progress(string(chunk[:n]))
		}
		if readErr != nil {
			break // PTY read returns EIO on process exit
		}
	}

	waitErr := cmd.Wait()
	output := truncate(buf.String())

	exitCode := 0
	if waitErr != nil {
		if cmdCtx.Err() == context.DeadlineExceeded {
			return toolgate.ErrorResult(fmt.Sprintf("command timed out after %dms", timeoutMs)), nil
		}
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}

	result := toolgate.TextResult(output)
	result.Metadata = map[string]any{"exit_code": exitCode}
	if exitCode != 0 {
		result.Success = false
		result.Error = &toolgate.ToolError{
			Kind:    toolgate.ErrExecution,
			Message: fmt.Sprintf("command exited with code %d", exitCode),
		}
	}
	return result, nil
}

func (t *BashTool) executeWithoutPTY(ctx context.Context, dir string, input BashInput, timeoutMs int) (*toolgate.Result, error) {
	cmd := exec.CommandContext(ctx, "bash", "-c", input.Command)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()

	text := truncate(string(output))

	exitCode := 0
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return toolgate.ErrorResult(fmt.Sprintf("command timed out after %dms", timeoutMs)), nil
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}

	result := toolgate.TextResult(text)
	result.Metadata = map[string]any{"exit_code": exitCode}
	if exitCode != 0 {
		result.Success = false
		result.Error = &toolgate.ToolError{
			Kind:    toolgate.ErrExecution,
			Message: fmt.Sprintf("command exited with code %d", exitCode),
		}
	}
	return result, nil
}
