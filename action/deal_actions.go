package action

import (
	"fmt"

	"github.com/crmkit/automation/crm"
	"github.com/crmkit/automation/model"
	"github.com/crmkit/automation/util"
)

var _ Handler = new(createDealAction)

type CreateDealConfig struct {
	Name   string  `json:"name"`
	Stage  string  `json:"stage"`
	Amount float64 `json:"amount"`
}

type createDealAction struct {
	deals crm.DealService
}

func NewCreateDealAction(deals crm.DealService) *createDealAction {
	return &createDealAction{deals: deals}
}

func (a *createDealAction) Type() model.ActionType {
	return model.ACTION_CREATE_DEAL
}

func (a *createDealAction) Execute(ctx Context, config map[string]any) (map[string]any, error) {
	conf, err := util.DecodeConfig[CreateDealConfig](util.ResolveParams(config, ctx.TriggerData))
	if err != nil {
		return nil, err
	}
	if len(conf.Name) == 0 {
		return nil, fmt.Errorf("deal name can not be empty")
	}
	deal := crm.Deal{
		TenantId: ctx.TenantId,
		Name:     conf.Name,
		Stage:    conf.Stage,
		Amount:   conf.Amount,
	}
	if ctx.EntityType == model.ENTITY_CONTACT {
		deal.ContactId = ctx.EntityId
	}
	created, err := a.deals.Create(deal)
	if err != nil {
		return nil, err
	}
	return map[string]any{"dealId": created.Id, "name": created.Name}, nil
}

// dealId picks the deal an action operates on: the target entity when the
// workflow runs against a deal, otherwise an explicit id from the config.
func dealId(ctx Context, configured string) (string, error) {
	if ctx.EntityType == model.ENTITY_DEAL {
		return ctx.EntityId, nil
	}
	if len(configured) == 0 {
		return "", fmt.Errorf("dealId is required when the target entity is not a deal")
	}
	return configured, nil
}

var _ Handler = new(updateDealFieldAction)

type UpdateDealFieldConfig struct {
	DealId string `json:"dealId"`
	Field  string `json:"field"`
	Value  any    `json:"value"`
}

type updateDealFieldAction struct {
	deals crm.DealService
}

func NewUpdateDealFieldAction(deals crm.DealService) *updateDealFieldAction {
	return &updateDealFieldAction{deals: deals}
}

func (a *updateDealFieldAction) Type() model.ActionType {
	return model.ACTION_UPDATE_DEAL_FIELD
}

func (a *updateDealFieldAction) Execute(ctx Context, config map[string]any) (map[string]any, error) {
	conf, err := util.DecodeConfig[UpdateDealFieldConfig](util.ResolveParams(config, ctx.TriggerData))
	if err != nil {
		return nil, err
	}
	if len(conf.Field) == 0 {
		return nil, fmt.Errorf("field can not be empty")
	}
	id, err := dealId(ctx, conf.DealId)
	if err != nil {
		return nil, err
	}
	if err := a.deals.UpdateField(ctx.TenantId, id, conf.Field, conf.Value); err != nil {
		return nil, err
	}
	return map[string]any{"dealId": id, "field": conf.Field, "value": conf.Value}, nil
}

var _ Handler = new(changeDealStageAction)

type ChangeDealStageConfig struct {
	DealId string `json:"dealId"`
	Stage  string `json:"stage"`
}

type changeDealStageAction struct {
	deals crm.DealService
}

func NewChangeDealStageAction(deals crm.DealService) *changeDealStageAction {
	return &changeDealStageAction{deals: deals}
}

func (a *changeDealStageAction) Type() model.ActionType {
	return model.ACTION_CHANGE_DEAL_STAGE
}

func (a *changeDealStageAction) Execute(ctx Context, config map[string]any) (map[string]any, error) {
	conf, err := util.DecodeConfig[ChangeDealStageConfig](util.ResolveParams(config, ctx.TriggerData))
	if err != nil {
		return nil, err
	}
	if len(conf.Stage) == 0 {
		return nil, fmt.Errorf("stage can not be empty")
	}
	id, err := dealId(ctx, conf.DealId)
	if err != nil {
		return nil, err
	}
	if err := a.deals.ChangeStage(ctx.TenantId, id, conf.Stage); err != nil {
		return nil, err
	}
	return map[string]any{"dealId": id, "stage": conf.Stage}, nil
}
