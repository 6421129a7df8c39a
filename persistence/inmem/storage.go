package inmem

import (
	"sort"
	"sync"
	"time"

	"github.com/crmkit/automation/model"
	"github.com/crmkit/automation/persistence"
)

// Storage is a mutex-guarded in-memory implementation of the persistence
// contracts, used by tests and by the memory storage-impl config option.
type Storage struct {
	workflows  *workflowStore
	executions *executionStore
	logs       *logStore
	queue      *delayQueue
}

var _ persistence.Storage = new(Storage)

func NewStorage() *Storage {
	return &Storage{
		workflows:  &workflowStore{items: make(map[string]model.Workflow)},
		executions: &executionStore{items: make(map[string]model.WorkflowExecution), claims: make(map[string]bool)},
		logs:       &logStore{items: make(map[string][]model.ExecutionLog)},
		queue:      &delayQueue{queues: make(map[string][]delayedMessage)},
	}
}

func (s *Storage) Workflows() persistence.WorkflowRepository {
	return s.workflows
}

func (s *Storage) Executions() persistence.ExecutionRepository {
	return s.executions
}

func (s *Storage) ExecutionLogs() persistence.ExecutionLogRepository {
	return s.logs
}

func (s *Storage) DelayQueue() persistence.DelayQueue {
	return s.queue
}

func key(parts ...string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += ":" + p
	}
	return out
}

type workflowStore struct {
	mu    sync.RWMutex
	items map[string]model.Workflow
}

func (s *workflowStore) Save(wf model.Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key(wf.TenantId, wf.Id)] = wf
	return nil
}

func (s *workflowStore) Get(tenantId string, id string) (*model.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wf, ok := s.items[key(tenantId, id)]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "workflow", Id: id}
	}
	return &wf, nil
}

func (s *workflowStore) Delete(tenantId string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key(tenantId, id))
	return nil
}

func (s *workflowStore) FindByTrigger(tenantId string, trigger model.TriggerType) ([]model.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Workflow
	for _, wf := range s.items {
		if wf.TenantId == tenantId && wf.TriggerType == trigger {
			out = append(out, wf)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out, nil
}

type executionStore struct {
	mu     sync.Mutex
	items  map[string]model.WorkflowExecution
	claims map[string]bool
}

func (s *executionStore) Create(ex model.WorkflowExecution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key(ex.TenantId, ex.Id)] = ex
	return nil
}

func (s *executionStore) Update(ex model.WorkflowExecution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key(ex.TenantId, ex.Id)]; !ok {
		return persistence.NotFoundError{Kind: "execution", Id: ex.Id}
	}
	s.items[key(ex.TenantId, ex.Id)] = ex
	return nil
}

func (s *executionStore) Get(tenantId string, id string) (*model.WorkflowExecution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ex, ok := s.items[key(tenantId, id)]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "execution", Id: id}
	}
	return &ex, nil
}

func (s *executionStore) FindByTarget(tenantId string, workflowId string, entityType model.EntityType, entityId string) ([]model.WorkflowExecution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.WorkflowExecution
	for _, ex := range s.items {
		if ex.TenantId == tenantId && ex.WorkflowId == workflowId && ex.EntityType == entityType && ex.EntityId == entityId {
			out = append(out, ex)
		}
	}
	return out, nil
}

func (s *executionStore) CountByTarget(tenantId string, workflowId string, entityType model.EntityType, entityId string) (int, error) {
	executions, err := s.FindByTarget(tenantId, workflowId, entityType, entityId)
	if err != nil {
		return 0, err
	}
	return len(executions), nil
}

func (s *executionStore) ClaimSingleRun(tenantId string, workflowId string, entityType model.EntityType, entityId string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(tenantId, workflowId, string(entityType), entityId)
	if s.claims[k] {
		return false, nil
	}
	s.claims[k] = true
	return true, nil
}

func (s *executionStore) ReleaseSingleRun(tenantId string, workflowId string, entityType model.EntityType, entityId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claims, key(tenantId, workflowId, string(entityType), entityId))
	return nil
}

type logStore struct {
	mu    sync.Mutex
	items map[string][]model.ExecutionLog
}

func (s *logStore) Append(lg model.ExecutionLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(lg.TenantId, lg.ExecutionId)
	s.items[k] = append(s.items[k], lg)
	return nil
}

func (s *logStore) Update(lg model.ExecutionLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(lg.TenantId, lg.ExecutionId)
	for i, existing := range s.items[k] {
		if existing.Id == lg.Id {
			s.items[k][i] = lg
			return nil
		}
	}
	return persistence.NotFoundError{Kind: "execution log", Id: lg.Id}
}

func (s *logStore) FindByExecution(tenantId string, executionId string) ([]model.ExecutionLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	logs := make([]model.ExecutionLog, len(s.items[key(tenantId, executionId)]))
	copy(logs, s.items[key(tenantId, executionId)])
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].StartedAt.Before(logs[j].StartedAt) })
	return logs, nil
}

type delayedMessage struct {
	due     time.Time
	message string
}

type delayQueue struct {
	mu     sync.Mutex
	queues map[string][]delayedMessage
}

func (q *delayQueue) PushWithDelay(queueName string, delay time.Duration, message []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queues[queueName] = append(q.queues[queueName], delayedMessage{
		due:     time.Now().Add(delay),
		message: string(message),
	})
	return nil
}

func (q *delayQueue) Pop(queueName string) ([]string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := time.Now()
	var due []string
	var pending []delayedMessage
	for _, m := range q.queues[queueName] {
		if m.due.After(now) {
			pending = append(pending, m)
		} else {
			due = append(due, m.message)
		}
	}
	q.queues[queueName] = pending
	if len(due) == 0 {
		return nil, persistence.EmptyQueueError{QueueName: queueName}
	}
	return due, nil
}
