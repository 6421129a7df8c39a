package redis

import (
	"context"
	"errors"

	rd "github.com/go-redis/redis/v9"
	"github.com/crmkit/automation/model"
	"github.com/crmkit/automation/persistence"
	"github.com/crmkit/automation/util"
)

var _ persistence.WorkflowRepository = new(redisWorkflowDao)

const WORKFLOW_DEF string = "WF_DEF"
const WORKFLOW_TRIGGER_IDX string = "WF_TRG"

type redisWorkflowDao struct {
	baseDao
	encoderDecoder util.EncoderDecoder[model.Workflow]
}

func NewRedisWorkflowDao(baseDao baseDao) *redisWorkflowDao {
	return &redisWorkflowDao{
		baseDao:        baseDao,
		encoderDecoder: util.NewJsonEncoderDecoder[model.Workflow](),
	}
}

func (dao *redisWorkflowDao) Save(wf model.Workflow) error {
	key := dao.getNamespaceKey(WORKFLOW_DEF, wf.TenantId, wf.Id)
	idxKey := dao.getNamespaceKey(WORKFLOW_TRIGGER_IDX, wf.TenantId, string(wf.TriggerType))
	ctx := context.Background()
	data, err := dao.encoderDecoder.Encode(wf)
	if err != nil {
		return err
	}
	pipe := dao.redisClient.Pipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, idxKey, wf.Id)
	if _, err := pipe.Exec(ctx); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (dao *redisWorkflowDao) Get(tenantId string, id string) (*model.Workflow, error) {
	key := dao.getNamespaceKey(WORKFLOW_DEF, tenantId, id)
	ctx := context.Background()
	val, err := dao.redisClient.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, persistence.NotFoundError{Kind: "workflow", Id: id}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return dao.encoderDecoder.Decode([]byte(val))
}

func (dao *redisWorkflowDao) Delete(tenantId string, id string) error {
	wf, err := dao.Get(tenantId, id)
	if err != nil {
		return err
	}
	key := dao.getNamespaceKey(WORKFLOW_DEF, tenantId, id)
	idxKey := dao.getNamespaceKey(WORKFLOW_TRIGGER_IDX, tenantId, string(wf.TriggerType))
	ctx := context.Background()
	pipe := dao.redisClient.Pipeline()
	pipe.Del(ctx, key)
	pipe.SRem(ctx, idxKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (dao *redisWorkflowDao) FindByTrigger(tenantId string, trigger model.TriggerType) ([]model.Workflow, error) {
	idxKey := dao.getNamespaceKey(WORKFLOW_TRIGGER_IDX, tenantId, string(trigger))
	ctx := context.Background()
	ids, err := dao.redisClient.SMembers(ctx, idxKey).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	var out []model.Workflow
	for _, id := range ids {
		wf, err := dao.Get(tenantId, id)
		if err != nil {
			// stale index entry, drop it
			if _, ok := err.(persistence.NotFoundError); ok {
				dao.redisClient.SRem(ctx, idxKey, id)
				continue
			}
			return nil, err
		}
		out = append(out, *wf)
	}
	return out, nil
}
