package action

import (
	"github.com/crmkit/automation/model"
)

var _ Handler = new(waitAction)

// waitAction does nothing; the pause itself comes from the action's
// delayMinutes, same as any other inter-step delay.
type waitAction struct{}

func NewWaitAction() *waitAction {
	return &waitAction{}
}

func (a *waitAction) Type() model.ActionType {
	return model.ACTION_WAIT
}

func (a *waitAction) Execute(ctx Context, config map[string]any) (map[string]any, error) {
	return map[string]any{}, nil
}
