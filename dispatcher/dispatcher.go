package dispatcher

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/crmkit/automation/condition"
	"github.com/crmkit/automation/engine"
	"github.com/crmkit/automation/logger"
	"github.com/crmkit/automation/metadata"
	"github.com/crmkit/automation/model"
	"github.com/crmkit/automation/persistence"
	"github.com/crmkit/automation/util"
	"go.uber.org/zap"
)

// Dispatcher is the sole entry point the domain write paths call after their
// own commit. Dispatch never blocks on workflow completion and never returns
// an error to the event producer; failures are logged and isolated per
// candidate workflow.
type Dispatcher struct {
	metadata   *metadata.Service
	executions persistence.ExecutionRepository
	engine     *engine.Engine
	worker     *util.Worker
	now        func() time.Time
}

type runTask struct {
	wf model.Workflow
	ex model.WorkflowExecution
}

func NewDispatcher(meta *metadata.Service, storage persistence.Storage, eng *engine.Engine, capacity int, wg *sync.WaitGroup) *Dispatcher {
	d := &Dispatcher{
		metadata:   meta,
		executions: storage.Executions(),
		engine:     eng,
		now:        time.Now,
	}
	d.worker = util.NewWorker("execution-dispatcher", wg, d.handle, capacity)
	return d
}

func (d *Dispatcher) Start() {
	d.worker.Start()
	logger.Info("trigger dispatcher started")
}

func (d *Dispatcher) Stop() {
	d.worker.Stop()
}

func (d *Dispatcher) handle(task util.Task) error {
	t, ok := task.(runTask)
	if !ok {
		return fmt.Errorf("can not handle task of type other than runTask")
	}
	d.engine.Run(&t.wf, &t.ex)
	return nil
}

// Dispatch finds the eligible workflows for the event and starts one
// execution per eligible definition.
func (d *Dispatcher) Dispatch(event model.TriggerEvent) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic during trigger dispatch", zap.String("trigger", string(event.TriggerType)), zap.Any("panic", r))
		}
	}()
	workflows, err := d.metadata.FindByTrigger(event.TenantId, event.TriggerType)
	if err != nil {
		logger.Error("error loading workflows for trigger", zap.String("tenantId", event.TenantId), zap.String("trigger", string(event.TriggerType)), zap.Error(err))
		return
	}
	for _, wf := range workflows {
		if !wf.Runnable() {
			continue
		}
		d.dispatchOne(wf, event)
	}
}

func (d *Dispatcher) dispatchOne(wf model.Workflow, event model.TriggerEvent) {
	eligible, err := d.eligible(&wf, event)
	if err != nil {
		logger.Error("error checking workflow eligibility", zap.String("workflow", wf.Name), zap.Error(err))
		return
	}
	if !eligible {
		logger.Debug("workflow not eligible for trigger", zap.String("workflow", wf.Name), zap.String("entityId", event.EntityId))
		return
	}
	claimed := false
	if !wf.AllowMultipleRuns {
		ok, err := d.executions.ClaimSingleRun(event.TenantId, wf.Id, event.EntityType, event.EntityId)
		if err != nil {
			logger.Error("error claiming single run", zap.String("workflow", wf.Name), zap.Error(err))
			return
		}
		if !ok {
			logger.Debug("single-run claim already held", zap.String("workflow", wf.Name), zap.String("entityId", event.EntityId))
			return
		}
		claimed = true
	}
	ex := model.WorkflowExecution{
		Id:          uuid.NewString(),
		TenantId:    event.TenantId,
		WorkflowId:  wf.Id,
		EntityType:  event.EntityType,
		EntityId:    event.EntityId,
		TriggerType: event.TriggerType,
		TriggerData: event.Data,
		Status:      model.EXECUTION_PENDING,
	}
	if err := d.executions.Create(ex); err != nil {
		logger.Error("error creating execution", zap.String("workflow", wf.Name), zap.Error(err))
		if claimed {
			if rerr := d.executions.ReleaseSingleRun(event.TenantId, wf.Id, event.EntityType, event.EntityId); rerr != nil {
				logger.Error("error releasing single-run claim", zap.String("workflow", wf.Name), zap.Error(rerr))
			}
		}
		return
	}
	logger.Info("execution created", zap.String("workflow", wf.Name), zap.String("executionId", ex.Id), zap.String("entityId", ex.EntityId))
	d.worker.Sender() <- runTask{wf: wf, ex: ex}
}

// eligible applies the run guards in order: single-run, max-run, conditions.
// Condition evaluation errors fail closed.
func (d *Dispatcher) eligible(wf *model.Workflow, event model.TriggerEvent) (bool, error) {
	if !wf.AllowMultipleRuns {
		existing, err := d.executions.FindByTarget(event.TenantId, wf.Id, event.EntityType, event.EntityId)
		if err != nil {
			return false, err
		}
		for _, ex := range existing {
			if ex.Status == model.EXECUTION_COMPLETED || ex.Status == model.EXECUTION_RUNNING {
				return false, nil
			}
		}
	}
	if wf.MaxRuns > 0 {
		count, err := d.executions.CountByTarget(event.TenantId, wf.Id, event.EntityType, event.EntityId)
		if err != nil {
			return false, err
		}
		if count >= wf.MaxRuns {
			return false, nil
		}
	}
	if wf.Conditions != nil {
		ok, err := condition.Evaluate(wf.Conditions, event.Data)
		if err != nil {
			logger.Error("error evaluating workflow conditions", zap.String("workflow", wf.Name), zap.Error(err))
			return false, nil
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
