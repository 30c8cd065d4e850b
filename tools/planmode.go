package tools

import (
	"context"
	"fmt"

	"github.com/armatrix/toolgate"
	"github.com/armatrix/toolgate/confirm"
)

// PlanCallback is called when the operator approves leaving plan mode.
// The caller typically flips the session's permission mode here.
type PlanCallback func(ctx context.Context, plan string) error

// PlanModeInput defines the input for the ExitPlanMode tool.
type PlanModeInput struct {
	Plan string `json:"plan,omitempty" jsonschema:"description=The finalized plan content"`
}

// PlanModeTool is the dedicated plan-mode exit action: the one tool
// plan mode does not force into a plan-violation confirmation. It asks
// on its own terms instead, presenting the plan for approval.
type PlanModeTool struct {
	Callback PlanCallback
}

var _ toolgate.Tool[PlanModeInput] = (*PlanModeTool)(nil)
var _ toolgate.Confirmer[PlanModeInput] = (*PlanModeTool)(nil)

func (t *PlanModeTool) Name() string        { return "ExitPlanMode" }
func (t *PlanModeTool) Kind() toolgate.Kind { return toolgate.KindReadOnly }
func (t *PlanModeTool) Description() string {
	return "Signal that planning is complete and ready for user approval"
}

// ExitsPlanMode marks this as the mode-exit action for the pipeline's
// plan-mode override.
func (t *PlanModeTool) ExitsPlanMode() bool { return true }

// Confirm presents the finalized plan to the operator.
func (t *PlanModeTool) Confirm(input PlanModeInput) *confirm.Details {
	message := input.Plan
	if message == "" {
		message = "(no plan content provided)"
	}
	return &confirm.Details{
		Kind:    confirm.KindPlanExit,
		Title:   "Exit plan mode?",
		Message: message,
	}
}

func (t *PlanModeTool) Execute(ctx context.Context, input PlanModeInput, _ *toolgate.ExecContext) (*toolgate.Result, error) {
	if t.Callback == nil {
		return toolgate.ErrorResult("plan mode callback not configured"), nil
	}
	if err := t.Callback(ctx, input.Plan); err != nil {
		return toolgate.ErrorResult(fmt.Sprintf("exit plan mode failed: %s", err.Error())), nil
	}
	return toolgate.TextResult("Plan submitted for approval."), nil
}
