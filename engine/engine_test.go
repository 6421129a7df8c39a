package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/crmkit/automation/action"
	"github.com/crmkit/automation/crm"
	"github.com/crmkit/automation/model"
	"github.com/crmkit/automation/persistence"
	"github.com/crmkit/automation/persistence/inmem"
	"github.com/crmkit/automation/util"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	storage  persistence.Storage
	engine   *Engine
	contacts *crm.InMemContactService
	tasks    *crm.InMemTaskService
}

func newFixture(t *testing.T, storage persistence.Storage) *fixture {
	t.Helper()
	contacts := crm.NewInMemContactService()
	contacts.Put(crm.Contact{Id: "c1", TenantId: "t1"})
	tasks := crm.NewInMemTaskService()
	registry := action.DefaultRegistry(action.Services{
		Contacts: contacts,
		Deals:    crm.NewInMemDealService(),
		Tasks:    tasks,
		Email:    crm.NewInMemEmailSender(),
		Chat:     crm.NewInMemChatMessenger(),
		Notifier: crm.NewInMemNotifier(),
	})
	return &fixture{
		storage:  storage,
		engine:   NewEngine(storage, registry, nil),
		contacts: contacts,
		tasks:    tasks,
	}
}

func newExecution(t *testing.T, storage persistence.Storage, wf *model.Workflow) *model.WorkflowExecution {
	t.Helper()
	ex := model.WorkflowExecution{
		Id:          uuid.NewString(),
		TenantId:    wf.TenantId,
		WorkflowId:  wf.Id,
		EntityType:  model.ENTITY_CONTACT,
		EntityId:    "c1",
		TriggerType: wf.TriggerType,
		Status:      model.EXECUTION_PENDING,
	}
	require.NoError(t, storage.Executions().Create(ex))
	return &ex
}

func tagAndTaskWorkflow() *model.Workflow {
	return &model.Workflow{
		Id:                "wf1",
		TenantId:          "t1",
		Name:              "welcome",
		TriggerType:       model.TRIGGER_CONTACT_CREATED,
		Status:            model.WORKFLOW_STATUS_ACTIVE,
		IsActive:          true,
		AllowMultipleRuns: true,
		Actions: []model.ActionDef{
			{Name: "tag new lead", Type: model.ACTION_ADD_TAG, Order: 1, Config: map[string]any{"tag": "new-lead"}},
			{Name: "create follow up", Type: model.ACTION_CREATE_TASK, Order: 2, Config: map[string]any{"title": "Follow up"}},
		},
	}
}

func TestRunAllActionsSucceed(t *testing.T) {
	storage := inmem.NewStorage()
	f := newFixture(t, storage)
	wf := tagAndTaskWorkflow()
	ex := newExecution(t, storage, wf)

	f.engine.Run(wf, ex)

	final, err := storage.Executions().Get("t1", ex.Id)
	require.NoError(t, err)
	require.Equal(t, model.EXECUTION_COMPLETED, final.Status)
	require.False(t, final.CompletedAt.IsZero())
	require.Empty(t, final.Error)

	logs, err := storage.ExecutionLogs().FindByExecution("t1", ex.Id)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, "tag new lead", logs[0].ActionName)
	require.Equal(t, model.EXECUTION_COMPLETED, logs[0].Status)
	require.Equal(t, "create follow up", logs[1].ActionName)
	require.Equal(t, model.EXECUTION_COMPLETED, logs[1].Status)

	contact, err := f.contacts.Get("t1", "c1")
	require.NoError(t, err)
	require.Contains(t, contact.Tags, "new-lead")
	require.Len(t, f.tasks.Tasks("t1"), 1)
}

func TestRunStopsOnFirstFailure(t *testing.T) {
	storage := inmem.NewStorage()
	f := newFixture(t, storage)
	wf := tagAndTaskWorkflow()
	// empty title makes the second action fail; the third must never run
	wf.Actions[1].Config = map[string]any{}
	wf.Actions = append(wf.Actions, model.ActionDef{
		Name: "never reached", Type: model.ACTION_ADD_TAG, Order: 3, Config: map[string]any{"tag": "x"},
	})
	ex := newExecution(t, storage, wf)

	f.engine.Run(wf, ex)

	final, err := storage.Executions().Get("t1", ex.Id)
	require.NoError(t, err)
	require.Equal(t, model.EXECUTION_FAILED, final.Status)
	require.Contains(t, final.Error, "create follow up")
	require.False(t, final.CompletedAt.IsZero())

	logs, err := storage.ExecutionLogs().FindByExecution("t1", ex.Id)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, model.EXECUTION_COMPLETED, logs[0].Status)
	require.Equal(t, model.EXECUTION_FAILED, logs[1].Status)
	require.NotEmpty(t, logs[1].Error)
}

func TestRunFailsClosedOnUnknownActionType(t *testing.T) {
	storage := inmem.NewStorage()
	f := newFixture(t, storage)
	wf := tagAndTaskWorkflow()
	wf.Actions[0].Type = model.ActionType("WHATSAPP_BLAST")
	ex := newExecution(t, storage, wf)

	f.engine.Run(wf, ex)

	final, err := storage.Executions().Get("t1", ex.Id)
	require.NoError(t, err)
	require.Equal(t, model.EXECUTION_FAILED, final.Status)

	logs, err := storage.ExecutionLogs().FindByExecution("t1", ex.Id)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, model.EXECUTION_FAILED, logs[0].Status)
}

func TestRunRespectsActionOrder(t *testing.T) {
	storage := inmem.NewStorage()
	f := newFixture(t, storage)
	wf := tagAndTaskWorkflow()
	// declared out of order on purpose
	wf.Actions = []model.ActionDef{
		{Name: "second", Type: model.ACTION_ADD_TAG, Order: 20, Config: map[string]any{"tag": "b"}},
		{Name: "first", Type: model.ACTION_ADD_TAG, Order: 10, Config: map[string]any{"tag": "a"}},
	}
	ex := newExecution(t, storage, wf)

	f.engine.Run(wf, ex)

	logs, err := storage.ExecutionLogs().FindByExecution("t1", ex.Id)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, "first", logs[0].ActionName)
	require.Equal(t, "second", logs[1].ActionName)
}

type captureQueue struct {
	pushed [][]byte
	delays []time.Duration
}

func (q *captureQueue) PushWithDelay(queueName string, delay time.Duration, message []byte) error {
	q.pushed = append(q.pushed, message)
	q.delays = append(q.delays, delay)
	return nil
}

func (q *captureQueue) Pop(queueName string) ([]string, error) {
	return nil, persistence.EmptyQueueError{QueueName: queueName}
}

type storageWithQueue struct {
	persistence.Storage
	queue *captureQueue
}

func (s *storageWithQueue) DelayQueue() persistence.DelayQueue {
	return s.queue
}

func TestRunSuspendsOnDelayAndResumes(t *testing.T) {
	queue := &captureQueue{}
	storage := &storageWithQueue{Storage: inmem.NewStorage(), queue: queue}
	f := newFixture(t, storage)
	wf := tagAndTaskWorkflow()
	wf.Actions[0].DelayMinutes = 30
	ex := newExecution(t, storage, wf)

	f.engine.Run(wf, ex)

	suspended, err := storage.Executions().Get("t1", ex.Id)
	require.NoError(t, err)
	require.Equal(t, model.EXECUTION_RUNNING, suspended.Status)

	logs, err := storage.ExecutionLogs().FindByExecution("t1", ex.Id)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	require.Len(t, queue.pushed, 1)
	require.Equal(t, 30*time.Minute, queue.delays[0])

	encDec := util.NewJsonEncoderDecoder[model.ResumeCheckpoint]()
	cp, err := encDec.Decode(queue.pushed[0])
	require.NoError(t, err)
	require.Equal(t, ex.Id, cp.ExecutionId)
	require.Equal(t, 1, cp.NextAction)

	// simulate the resume executor firing after the delay
	f.engine.ContinueFrom(wf, suspended, cp.NextAction)

	final, err := storage.Executions().Get("t1", ex.Id)
	require.NoError(t, err)
	require.Equal(t, model.EXECUTION_COMPLETED, final.Status)

	logs, err = storage.ExecutionLogs().FindByExecution("t1", ex.Id)
	require.NoError(t, err)
	require.Len(t, logs, 2)
}

func TestFailedRunReleasesSingleRunClaim(t *testing.T) {
	storage := inmem.NewStorage()
	f := newFixture(t, storage)
	wf := tagAndTaskWorkflow()
	wf.AllowMultipleRuns = false
	wf.Actions[1].Config = map[string]any{}

	claimed, err := storage.Executions().ClaimSingleRun("t1", wf.Id, model.ENTITY_CONTACT, "c1")
	require.NoError(t, err)
	require.True(t, claimed)

	ex := newExecution(t, storage, wf)
	f.engine.Run(wf, ex)

	final, err := storage.Executions().Get("t1", ex.Id)
	require.NoError(t, err)
	require.Equal(t, model.EXECUTION_FAILED, final.Status)

	// claim must be free again for the next trigger
	claimed, err = storage.Executions().ClaimSingleRun("t1", wf.Id, model.ENTITY_CONTACT, "c1")
	require.NoError(t, err)
	require.True(t, claimed)
}

func TestRecorderRefusesDoubleFinish(t *testing.T) {
	storage := inmem.NewStorage()
	recorder := NewLogRecorder(storage.ExecutionLogs())
	ex := &model.WorkflowExecution{Id: "e1", TenantId: "t1"}

	lg, err := recorder.Start(ex, model.ActionDef{Name: "a", Type: model.ACTION_WAIT})
	require.NoError(t, err)
	require.NoError(t, recorder.FinishSuccess(lg, map[string]any{}))
	require.Error(t, recorder.FinishSuccess(lg, map[string]any{}))
	require.Error(t, recorder.FinishFailure(lg, persistence.NotFoundError{Kind: "x", Id: "y"}))
}
