package action

import (
	"fmt"
	"time"

	"github.com/crmkit/automation/crm"
	"github.com/crmkit/automation/model"
	"github.com/crmkit/automation/util"
)

var _ Handler = new(createTaskAction)

type CreateTaskConfig struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssigneeId  string `json:"assigneeId"`
	DueInDays   int    `json:"dueInDays"`
}

type createTaskAction struct {
	tasks crm.TaskService
}

func NewCreateTaskAction(tasks crm.TaskService) *createTaskAction {
	return &createTaskAction{tasks: tasks}
}

func (a *createTaskAction) Type() model.ActionType {
	return model.ACTION_CREATE_TASK
}

func (a *createTaskAction) Execute(ctx Context, config map[string]any) (map[string]any, error) {
	conf, err := util.DecodeConfig[CreateTaskConfig](util.ResolveParams(config, ctx.TriggerData))
	if err != nil {
		return nil, err
	}
	if len(conf.Title) == 0 {
		return nil, fmt.Errorf("task title can not be empty")
	}
	task := crm.Task{
		TenantId:    ctx.TenantId,
		Title:       conf.Title,
		Description: conf.Description,
		AssigneeId:  conf.AssigneeId,
		EntityType:  string(ctx.EntityType),
		EntityId:    ctx.EntityId,
	}
	if conf.DueInDays > 0 {
		task.DueAt = time.Now().AddDate(0, 0, conf.DueInDays)
	}
	created, err := a.tasks.Create(task)
	if err != nil {
		return nil, err
	}
	return map[string]any{"taskId": created.Id, "title": created.Title}, nil
}
