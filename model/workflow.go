package model

import "time"

type TriggerType string

const TRIGGER_CONTACT_CREATED TriggerType = "CONTACT_CREATED"
const TRIGGER_CONTACT_UPDATED TriggerType = "CONTACT_UPDATED"
const TRIGGER_CONTACT_STAGE_CHANGED TriggerType = "CONTACT_STAGE_CHANGED"
const TRIGGER_TAG_ADDED TriggerType = "TAG_ADDED"
const TRIGGER_DEAL_CREATED TriggerType = "DEAL_CREATED"
const TRIGGER_DEAL_STAGE_CHANGED TriggerType = "DEAL_STAGE_CHANGED"
const TRIGGER_DEAL_WON TriggerType = "DEAL_WON"
const TRIGGER_DEAL_LOST TriggerType = "DEAL_LOST"
const TRIGGER_TASK_COMPLETED TriggerType = "TASK_COMPLETED"
const TRIGGER_FORM_SUBMITTED TriggerType = "FORM_SUBMITTED"

var validTriggerTypes = map[TriggerType]bool{
	TRIGGER_CONTACT_CREATED:       true,
	TRIGGER_CONTACT_UPDATED:       true,
	TRIGGER_CONTACT_STAGE_CHANGED: true,
	TRIGGER_TAG_ADDED:             true,
	TRIGGER_DEAL_CREATED:          true,
	TRIGGER_DEAL_STAGE_CHANGED:    true,
	TRIGGER_DEAL_WON:              true,
	TRIGGER_DEAL_LOST:             true,
	TRIGGER_TASK_COMPLETED:        true,
	TRIGGER_FORM_SUBMITTED:        true,
}

func ValidTriggerType(t TriggerType) bool {
	return validTriggerTypes[t]
}

type WorkflowStatus string

const WORKFLOW_STATUS_DRAFT WorkflowStatus = "DRAFT"
const WORKFLOW_STATUS_ACTIVE WorkflowStatus = "ACTIVE"
const WORKFLOW_STATUS_PAUSED WorkflowStatus = "PAUSED"

type ActionType string

const ACTION_UPDATE_CONTACT_FIELD ActionType = "UPDATE_CONTACT_FIELD"
const ACTION_CHANGE_CONTACT_STAGE ActionType = "CHANGE_CONTACT_STAGE"
const ACTION_ADD_TAG ActionType = "ADD_TAG"
const ACTION_ADJUST_LEAD_SCORE ActionType = "ADJUST_LEAD_SCORE"
const ACTION_REASSIGN_CONTACT ActionType = "REASSIGN_CONTACT"
const ACTION_CREATE_DEAL ActionType = "CREATE_DEAL"
const ACTION_UPDATE_DEAL_FIELD ActionType = "UPDATE_DEAL_FIELD"
const ACTION_CHANGE_DEAL_STAGE ActionType = "CHANGE_DEAL_STAGE"
const ACTION_CREATE_TASK ActionType = "CREATE_TASK"
const ACTION_SEND_EMAIL ActionType = "SEND_EMAIL"
const ACTION_SEND_CHAT_MESSAGE ActionType = "SEND_CHAT_MESSAGE"
const ACTION_NOTIFY ActionType = "NOTIFY"
const ACTION_WAIT ActionType = "WAIT"

var validActionTypes = map[ActionType]bool{
	ACTION_UPDATE_CONTACT_FIELD: true,
	ACTION_CHANGE_CONTACT_STAGE: true,
	ACTION_ADD_TAG:              true,
	ACTION_ADJUST_LEAD_SCORE:    true,
	ACTION_REASSIGN_CONTACT:     true,
	ACTION_CREATE_DEAL:          true,
	ACTION_UPDATE_DEAL_FIELD:    true,
	ACTION_CHANGE_DEAL_STAGE:    true,
	ACTION_CREATE_TASK:          true,
	ACTION_SEND_EMAIL:           true,
	ACTION_SEND_CHAT_MESSAGE:    true,
	ACTION_NOTIFY:               true,
	ACTION_WAIT:                 true,
}

func ValidActionType(t ActionType) bool {
	return validActionTypes[t]
}

type Workflow struct {
	Id                string         `json:"id"`
	TenantId          string         `json:"tenantId"`
	Name              string         `json:"name"`
	Description       string         `json:"description"`
	TriggerType       TriggerType    `json:"triggerType"`
	TriggerConfig     map[string]any `json:"triggerConfig,omitempty"`
	Conditions        *Condition     `json:"conditions,omitempty"`
	Status            WorkflowStatus `json:"status"`
	IsActive          bool           `json:"isActive"`
	AllowMultipleRuns bool           `json:"allowMultipleRuns"`
	MaxRuns           int            `json:"maxRuns"`
	Actions           []ActionDef    `json:"actions"`
	CreatedAt         time.Time      `json:"createdAt"`
}

// Runnable reports whether the dispatcher may start executions for this definition.
func (w *Workflow) Runnable() bool {
	return w.IsActive && w.Status == WORKFLOW_STATUS_ACTIVE
}

type ActionDef struct {
	Name         string         `json:"name"`
	Type         ActionType     `json:"type"`
	Config       map[string]any `json:"config"`
	Order        int            `json:"order"`
	DelayMinutes int            `json:"delayMinutes"`
}

// Condition gates execution of a workflow on the trigger payload. Rules are
// jsonpath predicates combined with Match (all or any); Script, when set, is a
// javascript boolean expression evaluated with the payload bound as `event`.
type Condition struct {
	Match  string          `json:"match,omitempty"`
	Rules  []ConditionRule `json:"rules,omitempty"`
	Script string          `json:"script,omitempty"`
}

const MATCH_ALL string = "all"
const MATCH_ANY string = "any"

type ConditionRule struct {
	Path  string `json:"path"`
	Op    string `json:"op"`
	Value any    `json:"value,omitempty"`
}
