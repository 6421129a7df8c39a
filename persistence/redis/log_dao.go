package redis

import (
	"context"
	"sort"

	"github.com/crmkit/automation/model"
	"github.com/crmkit/automation/persistence"
	"github.com/crmkit/automation/util"
)

var _ persistence.ExecutionLogRepository = new(redisLogDao)

const EXECUTION_LOG string = "EXEC_LOG"

type redisLogDao struct {
	baseDao
	encoderDecoder util.EncoderDecoder[model.ExecutionLog]
}

func NewRedisLogDao(baseDao baseDao) *redisLogDao {
	return &redisLogDao{
		baseDao:        baseDao,
		encoderDecoder: util.NewJsonEncoderDecoder[model.ExecutionLog](),
	}
}

func (dao *redisLogDao) write(lg model.ExecutionLog) error {
	key := dao.getNamespaceKey(EXECUTION_LOG, lg.TenantId, lg.ExecutionId)
	ctx := context.Background()
	data, err := dao.encoderDecoder.Encode(lg)
	if err != nil {
		return err
	}
	if err := dao.redisClient.HSet(ctx, key, lg.Id, data).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (dao *redisLogDao) Append(lg model.ExecutionLog) error {
	return dao.write(lg)
}

func (dao *redisLogDao) Update(lg model.ExecutionLog) error {
	return dao.write(lg)
}

func (dao *redisLogDao) FindByExecution(tenantId string, executionId string) ([]model.ExecutionLog, error) {
	key := dao.getNamespaceKey(EXECUTION_LOG, tenantId, executionId)
	ctx := context.Background()
	entries, err := dao.redisClient.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	logs := make([]model.ExecutionLog, 0, len(entries))
	for _, raw := range entries {
		lg, err := dao.encoderDecoder.Decode([]byte(raw))
		if err != nil {
			return nil, err
		}
		logs = append(logs, *lg)
	}
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].StartedAt.Before(logs[j].StartedAt) })
	return logs, nil
}
