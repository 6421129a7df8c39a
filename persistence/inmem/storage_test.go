package inmem

import (
	"testing"
	"time"

	"github.com/crmkit/automation/model"
	"github.com/crmkit/automation/persistence"
	"github.com/stretchr/testify/require"
)

func TestWorkflowStoreIsTenantScoped(t *testing.T) {
	storage := NewStorage()
	repo := storage.Workflows()

	require.NoError(t, repo.Save(model.Workflow{Id: "wf1", TenantId: "t1", TriggerType: model.TRIGGER_DEAL_WON}))
	require.NoError(t, repo.Save(model.Workflow{Id: "wf1", TenantId: "t2", TriggerType: model.TRIGGER_DEAL_WON}))

	found, err := repo.FindByTrigger("t1", model.TRIGGER_DEAL_WON)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "t1", found[0].TenantId)

	require.NoError(t, repo.Delete("t1", "wf1"))
	_, err = repo.Get("t1", "wf1")
	var notFound persistence.NotFoundError
	require.ErrorAs(t, err, &notFound)

	_, err = repo.Get("t2", "wf1")
	require.NoError(t, err)
}

func TestExecutionStoreUpdateRequiresExisting(t *testing.T) {
	storage := NewStorage()
	repo := storage.Executions()

	err := repo.Update(model.WorkflowExecution{Id: "missing", TenantId: "t1"})
	var notFound persistence.NotFoundError
	require.ErrorAs(t, err, &notFound)

	require.NoError(t, repo.Create(model.WorkflowExecution{Id: "e1", TenantId: "t1", Status: model.EXECUTION_PENDING}))
	require.NoError(t, repo.Update(model.WorkflowExecution{Id: "e1", TenantId: "t1", Status: model.EXECUTION_RUNNING}))

	ex, err := repo.Get("t1", "e1")
	require.NoError(t, err)
	require.Equal(t, model.EXECUTION_RUNNING, ex.Status)
}

func TestSingleRunClaim(t *testing.T) {
	storage := NewStorage()
	repo := storage.Executions()

	claimed, err := repo.ClaimSingleRun("t1", "wf1", model.ENTITY_CONTACT, "c1")
	require.NoError(t, err)
	require.True(t, claimed)

	claimed, err = repo.ClaimSingleRun("t1", "wf1", model.ENTITY_CONTACT, "c1")
	require.NoError(t, err)
	require.False(t, claimed)

	// a different entity holds its own claim
	claimed, err = repo.ClaimSingleRun("t1", "wf1", model.ENTITY_CONTACT, "c2")
	require.NoError(t, err)
	require.True(t, claimed)

	require.NoError(t, repo.ReleaseSingleRun("t1", "wf1", model.ENTITY_CONTACT, "c1"))
	claimed, err = repo.ClaimSingleRun("t1", "wf1", model.ENTITY_CONTACT, "c1")
	require.NoError(t, err)
	require.True(t, claimed)
}

func TestLogStoreOrdersByStartTime(t *testing.T) {
	storage := NewStorage()
	repo := storage.ExecutionLogs()
	base := time.Now()

	require.NoError(t, repo.Append(model.ExecutionLog{Id: "l2", ExecutionId: "e1", TenantId: "t1", ActionName: "second", StartedAt: base.Add(time.Second)}))
	require.NoError(t, repo.Append(model.ExecutionLog{Id: "l1", ExecutionId: "e1", TenantId: "t1", ActionName: "first", StartedAt: base}))

	logs, err := repo.FindByExecution("t1", "e1")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, "first", logs[0].ActionName)
	require.Equal(t, "second", logs[1].ActionName)
}

func TestDelayQueueReleasesOnlyDueMessages(t *testing.T) {
	storage := NewStorage()
	queue := storage.DelayQueue()

	require.NoError(t, queue.PushWithDelay("resume", 0, []byte("now")))
	require.NoError(t, queue.PushWithDelay("resume", time.Hour, []byte("later")))

	messages, err := queue.Pop("resume")
	require.NoError(t, err)
	require.Equal(t, []string{"now"}, messages)

	_, err = queue.Pop("resume")
	var empty persistence.EmptyQueueError
	require.ErrorAs(t, err, &empty)
}
