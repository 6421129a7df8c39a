package model

import "time"

type ExecutionStatus string

const EXECUTION_PENDING ExecutionStatus = "PENDING"
const EXECUTION_RUNNING ExecutionStatus = "RUNNING"
const EXECUTION_COMPLETED ExecutionStatus = "COMPLETED"
const EXECUTION_FAILED ExecutionStatus = "FAILED"

func (s ExecutionStatus) Terminal() bool {
	return s == EXECUTION_COMPLETED || s == EXECUTION_FAILED
}

type EntityType string

const ENTITY_CONTACT EntityType = "CONTACT"
const ENTITY_DEAL EntityType = "DEAL"
const ENTITY_COMPANY EntityType = "COMPANY"

// WorkflowExecution is one run of a workflow definition against one entity.
// It is created PENDING by the dispatcher and driven to a terminal state by
// the engine; terminal states are final.
type WorkflowExecution struct {
	Id          string          `json:"id"`
	TenantId    string          `json:"tenantId"`
	WorkflowId  string          `json:"workflowId"`
	EntityType  EntityType      `json:"entityType"`
	EntityId    string          `json:"entityId"`
	TriggerType TriggerType     `json:"triggerType"`
	TriggerData map[string]any  `json:"triggerData,omitempty"`
	Status      ExecutionStatus `json:"status"`
	Error       string          `json:"error,omitempty"`
	StartedAt   time.Time       `json:"startedAt,omitempty"`
	CompletedAt time.Time       `json:"completedAt,omitempty"`
}

// ExecutionLog records one action attempt within an execution. Append-only;
// once terminal it is never touched again.
type ExecutionLog struct {
	Id           string          `json:"id"`
	ExecutionId  string          `json:"executionId"`
	TenantId     string          `json:"tenantId"`
	ActionName   string          `json:"actionName"`
	ActionType   ActionType      `json:"actionType"`
	ActionConfig map[string]any  `json:"actionConfig,omitempty"`
	Status       ExecutionStatus `json:"status"`
	Result       map[string]any  `json:"result,omitempty"`
	Error        string          `json:"error,omitempty"`
	ErrorDetails string          `json:"errorDetails,omitempty"`
	StartedAt    time.Time       `json:"startedAt"`
	CompletedAt  time.Time       `json:"completedAt,omitempty"`
}

// ResumeCheckpoint is pushed to the delay queue when an action declares a
// post-completion delay; the resume executor continues the run from NextAction.
type ResumeCheckpoint struct {
	TenantId    string `json:"tenantId"`
	WorkflowId  string `json:"workflowId"`
	ExecutionId string `json:"executionId"`
	NextAction  int    `json:"nextAction"`
}
