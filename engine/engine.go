package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/crmkit/automation/action"
	"github.com/crmkit/automation/analytics"
	"github.com/crmkit/automation/logger"
	"github.com/crmkit/automation/model"
	"github.com/crmkit/automation/persistence"
	"github.com/crmkit/automation/util"
	"go.uber.org/zap"
)

const RESUME_QUEUE string = "wf_resume"

// Engine drives one execution to a terminal state. Actions run strictly in
// order; the first failure stops the run. An action-level delay checkpoints
// the execution into the delay queue instead of sleeping in process.
type Engine struct {
	executions persistence.ExecutionRepository
	recorder   *LogRecorder
	registry   *action.Registry
	delayQueue persistence.DelayQueue
	collector  analytics.WorkflowDataCollector
	encDec     util.EncoderDecoder[model.ResumeCheckpoint]
	now        func() time.Time
}

func NewEngine(storage persistence.Storage, registry *action.Registry, collector analytics.WorkflowDataCollector) *Engine {
	if collector == nil {
		collector = analytics.NewNoopCollector()
	}
	return &Engine{
		executions: storage.Executions(),
		recorder:   NewLogRecorder(storage.ExecutionLogs()),
		registry:   registry,
		delayQueue: storage.DelayQueue(),
		collector:  collector,
		encDec:     util.NewJsonEncoderDecoder[model.ResumeCheckpoint](),
		now:        time.Now,
	}
}

// OrderedActions returns the definition's actions sorted ascending by order,
// creation order preserved for ties.
func OrderedActions(wf *model.Workflow) []model.ActionDef {
	actions := make([]model.ActionDef, len(wf.Actions))
	copy(actions, wf.Actions)
	sort.SliceStable(actions, func(i, j int) bool { return actions[i].Order < actions[j].Order })
	return actions
}

// Run transitions the execution to RUNNING and executes the action list from
// the beginning. If the RUNNING write fails the run aborts with no further
// side effects.
func (e *Engine) Run(wf *model.Workflow, ex *model.WorkflowExecution) {
	ex.Status = model.EXECUTION_RUNNING
	ex.StartedAt = e.now()
	if err := e.executions.Update(*ex); err != nil {
		logger.Error("error marking execution running", zap.String("executionId", ex.Id), zap.Error(err))
		return
	}
	e.ContinueFrom(wf, ex, 0)
}

// ContinueFrom executes the ordered action list starting at position from.
// The resume executor re-enters here after a delay checkpoint.
func (e *Engine) ContinueFrom(wf *model.Workflow, ex *model.WorkflowExecution, from int) {
	actions := OrderedActions(wf)
	for i := from; i < len(actions); i++ {
		act := actions[i]
		lg, err := e.recorder.Start(ex, act)
		if err != nil {
			logger.Error("error recording action start", zap.String("executionId", ex.Id), zap.String("action", act.Name), zap.Error(err))
			e.markFailed(wf, ex, fmt.Errorf("error recording action %s: %w", act.Name, err))
			return
		}
		result, err := e.executeAction(ex, act)
		if err != nil {
			if ferr := e.recorder.FinishFailure(lg, err); ferr != nil {
				logger.Error("error recording action failure", zap.String("executionId", ex.Id), zap.Error(ferr))
			}
			e.collector.RecordActionFailure(wf.Name, ex.Id, act.Name, err.Error())
			e.markFailed(wf, ex, fmt.Errorf("action %s failed: %w", act.Name, err))
			return
		}
		if err := e.recorder.FinishSuccess(lg, result); err != nil {
			logger.Error("error recording action success", zap.String("executionId", ex.Id), zap.Error(err))
			e.markFailed(wf, ex, fmt.Errorf("error recording result of action %s: %w", act.Name, err))
			return
		}
		e.collector.RecordActionSuccess(wf.Name, ex.Id, act.Name, result)
		if act.DelayMinutes > 0 && i+1 < len(actions) {
			if err := e.scheduleResume(ex, wf, i+1, act.DelayMinutes); err != nil {
				e.markFailed(wf, ex, fmt.Errorf("error scheduling resume after action %s: %w", act.Name, err))
			}
			return
		}
	}
	e.markCompleted(ex)
}

func (e *Engine) executeAction(ex *model.WorkflowExecution, act model.ActionDef) (map[string]any, error) {
	handler, err := e.registry.Resolve(act.Type)
	if err != nil {
		return nil, err
	}
	ctx := action.Context{
		TenantId:    ex.TenantId,
		EntityType:  ex.EntityType,
		EntityId:    ex.EntityId,
		TriggerData: ex.TriggerData,
		ExecutionId: ex.Id,
	}
	return handler.Execute(ctx, act.Config)
}

func (e *Engine) scheduleResume(ex *model.WorkflowExecution, wf *model.Workflow, nextAction int, delayMinutes int) error {
	cp := model.ResumeCheckpoint{
		TenantId:    ex.TenantId,
		WorkflowId:  ex.WorkflowId,
		ExecutionId: ex.Id,
		NextAction:  nextAction,
	}
	data, err := e.encDec.Encode(cp)
	if err != nil {
		return err
	}
	delay := time.Duration(delayMinutes) * time.Minute
	if err := e.delayQueue.PushWithDelay(RESUME_QUEUE, delay, data); err != nil {
		return err
	}
	logger.Info("execution suspended for delay", zap.String("workflow", wf.Name), zap.String("executionId", ex.Id), zap.Int("nextAction", nextAction), zap.Duration("delay", delay))
	return nil
}

func (e *Engine) markCompleted(ex *model.WorkflowExecution) {
	ex.Status = model.EXECUTION_COMPLETED
	ex.CompletedAt = e.now()
	if err := e.executions.Update(*ex); err != nil {
		logger.Error("error marking execution completed", zap.String("executionId", ex.Id), zap.Error(err))
		return
	}
	logger.Info("execution completed", zap.String("executionId", ex.Id))
}

func (e *Engine) markFailed(wf *model.Workflow, ex *model.WorkflowExecution, cause error) {
	ex.Status = model.EXECUTION_FAILED
	ex.Error = cause.Error()
	ex.CompletedAt = e.now()
	if err := e.executions.Update(*ex); err != nil {
		logger.Error("error marking execution failed", zap.String("executionId", ex.Id), zap.Error(err))
		return
	}
	// a failed run must not block a future trigger for single-run workflows
	if !wf.AllowMultipleRuns {
		if err := e.executions.ReleaseSingleRun(ex.TenantId, ex.WorkflowId, ex.EntityType, ex.EntityId); err != nil {
			logger.Error("error releasing single-run claim", zap.String("executionId", ex.Id), zap.Error(err))
		}
	}
	logger.Info("execution failed", zap.String("executionId", ex.Id), zap.String("error", ex.Error))
}
