package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/crmkit/automation/model"
	"github.com/crmkit/automation/persistence"
)

// LogRecorder writes the audit trail. Start appends a RUNNING entry; the
// finish calls move it to a terminal status exactly once.
type LogRecorder struct {
	logs persistence.ExecutionLogRepository
	now  func() time.Time
}

func NewLogRecorder(logs persistence.ExecutionLogRepository) *LogRecorder {
	return &LogRecorder{
		logs: logs,
		now:  time.Now,
	}
}

func (r *LogRecorder) Start(ex *model.WorkflowExecution, act model.ActionDef) (*model.ExecutionLog, error) {
	lg := model.ExecutionLog{
		Id:           uuid.NewString(),
		ExecutionId:  ex.Id,
		TenantId:     ex.TenantId,
		ActionName:   act.Name,
		ActionType:   act.Type,
		ActionConfig: act.Config,
		Status:       model.EXECUTION_RUNNING,
		StartedAt:    r.now(),
	}
	if err := r.logs.Append(lg); err != nil {
		return nil, err
	}
	return &lg, nil
}

func (r *LogRecorder) FinishSuccess(lg *model.ExecutionLog, result map[string]any) error {
	if lg.Status.Terminal() {
		return fmt.Errorf("execution log %s already finished", lg.Id)
	}
	lg.Status = model.EXECUTION_COMPLETED
	lg.Result = result
	lg.CompletedAt = r.now()
	return r.logs.Update(*lg)
}

func (r *LogRecorder) FinishFailure(lg *model.ExecutionLog, cause error) error {
	if lg.Status.Terminal() {
		return fmt.Errorf("execution log %s already finished", lg.Id)
	}
	lg.Status = model.EXECUTION_FAILED
	lg.Error = cause.Error()
	lg.ErrorDetails = fmt.Sprintf("%+v", cause)
	lg.CompletedAt = r.now()
	return r.logs.Update(*lg)
}
