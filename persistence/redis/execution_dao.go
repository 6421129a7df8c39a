package redis

import (
	"context"
	"errors"

	rd "github.com/go-redis/redis/v9"
	"github.com/crmkit/automation/model"
	"github.com/crmkit/automation/persistence"
	"github.com/crmkit/automation/util"
)

var _ persistence.ExecutionRepository = new(redisExecutionDao)

const EXECUTION string = "EXEC"
const EXECUTION_TARGET_IDX string = "EXEC_TARGET"
const EXECUTION_CLAIM string = "EXEC_CLAIM"

type redisExecutionDao struct {
	baseDao
	encoderDecoder util.EncoderDecoder[model.WorkflowExecution]
}

func NewRedisExecutionDao(baseDao baseDao) *redisExecutionDao {
	return &redisExecutionDao{
		baseDao:        baseDao,
		encoderDecoder: util.NewJsonEncoderDecoder[model.WorkflowExecution](),
	}
}

func (dao *redisExecutionDao) targetKey(tenantId string, workflowId string, entityType model.EntityType, entityId string) string {
	return dao.getNamespaceKey(EXECUTION_TARGET_IDX, tenantId, workflowId, string(entityType), entityId)
}

func (dao *redisExecutionDao) Create(ex model.WorkflowExecution) error {
	key := dao.getNamespaceKey(EXECUTION, ex.TenantId, ex.Id)
	ctx := context.Background()
	data, err := dao.encoderDecoder.Encode(ex)
	if err != nil {
		return err
	}
	pipe := dao.redisClient.Pipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, dao.targetKey(ex.TenantId, ex.WorkflowId, ex.EntityType, ex.EntityId), ex.Id)
	if _, err := pipe.Exec(ctx); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (dao *redisExecutionDao) Update(ex model.WorkflowExecution) error {
	key := dao.getNamespaceKey(EXECUTION, ex.TenantId, ex.Id)
	ctx := context.Background()
	data, err := dao.encoderDecoder.Encode(ex)
	if err != nil {
		return err
	}
	if err := dao.redisClient.Set(ctx, key, data, 0).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (dao *redisExecutionDao) Get(tenantId string, id string) (*model.WorkflowExecution, error) {
	key := dao.getNamespaceKey(EXECUTION, tenantId, id)
	ctx := context.Background()
	val, err := dao.redisClient.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, persistence.NotFoundError{Kind: "execution", Id: id}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return dao.encoderDecoder.Decode([]byte(val))
}

func (dao *redisExecutionDao) FindByTarget(tenantId string, workflowId string, entityType model.EntityType, entityId string) ([]model.WorkflowExecution, error) {
	ctx := context.Background()
	ids, err := dao.redisClient.SMembers(ctx, dao.targetKey(tenantId, workflowId, entityType, entityId)).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	var out []model.WorkflowExecution
	for _, id := range ids {
		ex, err := dao.Get(tenantId, id)
		if err != nil {
			if _, ok := err.(persistence.NotFoundError); ok {
				continue
			}
			return nil, err
		}
		out = append(out, *ex)
	}
	return out, nil
}

func (dao *redisExecutionDao) CountByTarget(tenantId string, workflowId string, entityType model.EntityType, entityId string) (int, error) {
	ctx := context.Background()
	n, err := dao.redisClient.SCard(ctx, dao.targetKey(tenantId, workflowId, entityType, entityId)).Result()
	if err != nil {
		return 0, persistence.StorageLayerError{Message: err.Error()}
	}
	return int(n), nil
}

func (dao *redisExecutionDao) ClaimSingleRun(tenantId string, workflowId string, entityType model.EntityType, entityId string) (bool, error) {
	key := dao.getNamespaceKey(EXECUTION_CLAIM, tenantId, workflowId, string(entityType), entityId)
	ctx := context.Background()
	ok, err := dao.redisClient.SetNX(ctx, key, "1", 0).Result()
	if err != nil {
		return false, persistence.StorageLayerError{Message: err.Error()}
	}
	return ok, nil
}

func (dao *redisExecutionDao) ReleaseSingleRun(tenantId string, workflowId string, entityType model.EntityType, entityId string) error {
	key := dao.getNamespaceKey(EXECUTION_CLAIM, tenantId, workflowId, string(entityType), entityId)
	ctx := context.Background()
	if err := dao.redisClient.Del(ctx, key).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}
