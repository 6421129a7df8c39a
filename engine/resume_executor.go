package engine

import (
	"errors"
	"sync"

	"github.com/crmkit/automation/logger"
	"github.com/crmkit/automation/model"
	"github.com/crmkit/automation/persistence"
	"github.com/crmkit/automation/util"
	"go.uber.org/zap"
)

// ResumeExecutor polls the delay queue for due checkpoints and continues the
// suspended executions. A checkpoint whose execution is no longer RUNNING is
// dropped.
type ResumeExecutor struct {
	engine     *Engine
	workflows  persistence.WorkflowRepository
	executions persistence.ExecutionRepository
	queue      persistence.DelayQueue
	encDec     util.EncoderDecoder[model.ResumeCheckpoint]
	stop       chan struct{}
	wg         *sync.WaitGroup
	interval   int
}

func NewResumeExecutor(engine *Engine, storage persistence.Storage, intervalSeconds int, wg *sync.WaitGroup) *ResumeExecutor {
	if intervalSeconds <= 0 {
		intervalSeconds = 1
	}
	return &ResumeExecutor{
		engine:     engine,
		workflows:  storage.Workflows(),
		executions: storage.Executions(),
		queue:      storage.DelayQueue(),
		encDec:     util.NewJsonEncoderDecoder[model.ResumeCheckpoint](),
		stop:       make(chan struct{}),
		wg:         wg,
		interval:   intervalSeconds,
	}
}

func (ex *ResumeExecutor) Name() string {
	return "resume-executor"
}

func (ex *ResumeExecutor) Start() error {
	fn := func() {
		res, err := ex.queue.Pop(RESUME_QUEUE)
		if err != nil {
			if !errors.As(err, &persistence.EmptyQueueError{}) {
				logger.Error("error while polling resume queue", zap.Error(err))
			}
			return
		}
		for _, r := range res {
			cp, err := ex.encDec.Decode([]byte(r))
			if err != nil {
				logger.Error("can not decode resume checkpoint", zap.Error(err))
				continue
			}
			ex.handle(cp)
		}
	}
	tw := util.NewTickWorker(ex.Name(), ex.interval, ex.stop, fn, ex.wg)
	tw.Start()
	logger.Info("resume executor started")
	return nil
}

func (ex *ResumeExecutor) Stop() error {
	ex.stop <- struct{}{}
	return nil
}

func (ex *ResumeExecutor) handle(cp *model.ResumeCheckpoint) {
	execution, err := ex.executions.Get(cp.TenantId, cp.ExecutionId)
	if err != nil {
		logger.Error("error loading execution for resume", zap.String("executionId", cp.ExecutionId), zap.Error(err))
		return
	}
	if execution.Status != model.EXECUTION_RUNNING {
		logger.Info("skipping resume of non-running execution", zap.String("executionId", cp.ExecutionId), zap.String("status", string(execution.Status)))
		return
	}
	wf, err := ex.workflows.Get(cp.TenantId, cp.WorkflowId)
	if err != nil {
		logger.Error("error loading workflow for resume", zap.String("workflowId", cp.WorkflowId), zap.Error(err))
		return
	}
	ex.engine.ContinueFrom(wf, execution, cp.NextAction)
}
