package persistence

import (
	"fmt"
	"time"

	"github.com/crmkit/automation/model"
)

type StorageLayerError struct {
	Message string
}

func (e StorageLayerError) Error() string {
	return fmt.Sprintf("storage layer error %s", e.Message)
}

type EmptyQueueError struct {
	QueueName string
}

func (e EmptyQueueError) Error() string {
	return fmt.Sprintf("queue %s is empty", e.QueueName)
}

type NotFoundError struct {
	Kind string
	Id   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Id)
}

// WorkflowRepository stores authored definitions. All reads and writes are
// tenant scoped.
type WorkflowRepository interface {
	Save(wf model.Workflow) error
	Get(tenantId string, id string) (*model.Workflow, error)
	Delete(tenantId string, id string) error
	FindByTrigger(tenantId string, trigger model.TriggerType) ([]model.Workflow, error)
}

// ExecutionRepository stores execution records and serves the eligibility
// lookups by (workflow, entityType, entityId). ClaimSingleRun is a
// compare-and-swap insert guard for allowMultipleRuns=false workflows; the
// claim is held while an execution is PENDING, RUNNING or COMPLETED and
// released when it ends FAILED.
type ExecutionRepository interface {
	Create(ex model.WorkflowExecution) error
	Update(ex model.WorkflowExecution) error
	Get(tenantId string, id string) (*model.WorkflowExecution, error)
	FindByTarget(tenantId string, workflowId string, entityType model.EntityType, entityId string) ([]model.WorkflowExecution, error)
	CountByTarget(tenantId string, workflowId string, entityType model.EntityType, entityId string) (int, error)
	ClaimSingleRun(tenantId string, workflowId string, entityType model.EntityType, entityId string) (bool, error)
	ReleaseSingleRun(tenantId string, workflowId string, entityType model.EntityType, entityId string) error
}

// ExecutionLogRepository is the audit trail. Append creates a RUNNING entry,
// Update finishes it; there is no other mutation path.
type ExecutionLogRepository interface {
	Append(lg model.ExecutionLog) error
	Update(lg model.ExecutionLog) error
	FindByExecution(tenantId string, executionId string) ([]model.ExecutionLog, error)
}

type DelayQueue interface {
	PushWithDelay(queueName string, delay time.Duration, message []byte) error
	Pop(queueName string) ([]string, error)
}

type Storage interface {
	Workflows() WorkflowRepository
	Executions() ExecutionRepository
	ExecutionLogs() ExecutionLogRepository
	DelayQueue() DelayQueue
}
