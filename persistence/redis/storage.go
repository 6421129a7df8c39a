package redis

import (
	"github.com/crmkit/automation/persistence"
)

type redisStorage struct {
	workflows  *redisWorkflowDao
	executions *redisExecutionDao
	logs       *redisLogDao
	queue      *redisDelayQueue
}

var _ persistence.Storage = new(redisStorage)

func NewRedisStorage(conf Config) *redisStorage {
	base := newBaseDao(conf)
	return &redisStorage{
		workflows:  NewRedisWorkflowDao(*base),
		executions: NewRedisExecutionDao(*base),
		logs:       NewRedisLogDao(*base),
		queue:      NewRedisDelayQueue(*base),
	}
}

func (s *redisStorage) Workflows() persistence.WorkflowRepository {
	return s.workflows
}

func (s *redisStorage) Executions() persistence.ExecutionRepository {
	return s.executions
}

func (s *redisStorage) ExecutionLogs() persistence.ExecutionLogRepository {
	return s.logs
}

func (s *redisStorage) DelayQueue() persistence.DelayQueue {
	return s.queue
}
