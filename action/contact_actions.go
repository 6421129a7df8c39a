package action

import (
	"fmt"

	"github.com/crmkit/automation/crm"
	"github.com/crmkit/automation/model"
	"github.com/crmkit/automation/util"
)

var _ Handler = new(updateContactFieldAction)

type UpdateContactFieldConfig struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

type updateContactFieldAction struct {
	contacts crm.ContactService
}

func NewUpdateContactFieldAction(contacts crm.ContactService) *updateContactFieldAction {
	return &updateContactFieldAction{contacts: contacts}
}

func (a *updateContactFieldAction) Type() model.ActionType {
	return model.ACTION_UPDATE_CONTACT_FIELD
}

func (a *updateContactFieldAction) Execute(ctx Context, config map[string]any) (map[string]any, error) {
	if err := requireEntity(ctx, model.ENTITY_CONTACT); err != nil {
		return nil, err
	}
	conf, err := util.DecodeConfig[UpdateContactFieldConfig](util.ResolveParams(config, ctx.TriggerData))
	if err != nil {
		return nil, err
	}
	if len(conf.Field) == 0 {
		return nil, fmt.Errorf("field can not be empty")
	}
	if err := a.contacts.UpdateField(ctx.TenantId, ctx.EntityId, conf.Field, conf.Value); err != nil {
		return nil, err
	}
	return map[string]any{"field": conf.Field, "value": conf.Value}, nil
}

var _ Handler = new(changeContactStageAction)

type ChangeContactStageConfig struct {
	Stage string `json:"stage"`
}

type changeContactStageAction struct {
	contacts crm.ContactService
}

func NewChangeContactStageAction(contacts crm.ContactService) *changeContactStageAction {
	return &changeContactStageAction{contacts: contacts}
}

func (a *changeContactStageAction) Type() model.ActionType {
	return model.ACTION_CHANGE_CONTACT_STAGE
}

func (a *changeContactStageAction) Execute(ctx Context, config map[string]any) (map[string]any, error) {
	if err := requireEntity(ctx, model.ENTITY_CONTACT); err != nil {
		return nil, err
	}
	conf, err := util.DecodeConfig[ChangeContactStageConfig](util.ResolveParams(config, ctx.TriggerData))
	if err != nil {
		return nil, err
	}
	if len(conf.Stage) == 0 {
		return nil, fmt.Errorf("stage can not be empty")
	}
	if err := a.contacts.ChangeStage(ctx.TenantId, ctx.EntityId, conf.Stage); err != nil {
		return nil, err
	}
	return map[string]any{"stage": conf.Stage}, nil
}

var _ Handler = new(addTagAction)

type AddTagConfig struct {
	Tag string `json:"tag"`
}

type addTagAction struct {
	contacts crm.ContactService
}

func NewAddTagAction(contacts crm.ContactService) *addTagAction {
	return &addTagAction{contacts: contacts}
}

func (a *addTagAction) Type() model.ActionType {
	return model.ACTION_ADD_TAG
}

func (a *addTagAction) Execute(ctx Context, config map[string]any) (map[string]any, error) {
	if err := requireEntity(ctx, model.ENTITY_CONTACT); err != nil {
		return nil, err
	}
	conf, err := util.DecodeConfig[AddTagConfig](util.ResolveParams(config, ctx.TriggerData))
	if err != nil {
		return nil, err
	}
	if len(conf.Tag) == 0 {
		return nil, fmt.Errorf("tag can not be empty")
	}
	if err := a.contacts.AddTag(ctx.TenantId, ctx.EntityId, conf.Tag); err != nil {
		return nil, err
	}
	return map[string]any{"tag": conf.Tag}, nil
}

var _ Handler = new(adjustLeadScoreAction)

type AdjustLeadScoreConfig struct {
	Delta int `json:"delta"`
}

type adjustLeadScoreAction struct {
	contacts crm.ContactService
}

func NewAdjustLeadScoreAction(contacts crm.ContactService) *adjustLeadScoreAction {
	return &adjustLeadScoreAction{contacts: contacts}
}

func (a *adjustLeadScoreAction) Type() model.ActionType {
	return model.ACTION_ADJUST_LEAD_SCORE
}

func (a *adjustLeadScoreAction) Execute(ctx Context, config map[string]any) (map[string]any, error) {
	if err := requireEntity(ctx, model.ENTITY_CONTACT); err != nil {
		return nil, err
	}
	conf, err := util.DecodeConfig[AdjustLeadScoreConfig](util.ResolveParams(config, ctx.TriggerData))
	if err != nil {
		return nil, err
	}
	score, err := a.contacts.AdjustLeadScore(ctx.TenantId, ctx.EntityId, conf.Delta)
	if err != nil {
		return nil, err
	}
	return map[string]any{"delta": conf.Delta, "leadScore": score}, nil
}

var _ Handler = new(reassignContactAction)

type ReassignContactConfig struct {
	OwnerId string `json:"ownerId"`
}

type reassignContactAction struct {
	contacts crm.ContactService
}

func NewReassignContactAction(contacts crm.ContactService) *reassignContactAction {
	return &reassignContactAction{contacts: contacts}
}

func (a *reassignContactAction) Type() model.ActionType {
	return model.ACTION_REASSIGN_CONTACT
}

func (a *reassignContactAction) Execute(ctx Context, config map[string]any) (map[string]any, error) {
	if err := requireEntity(ctx, model.ENTITY_CONTACT); err != nil {
		return nil, err
	}
	conf, err := util.DecodeConfig[ReassignContactConfig](util.ResolveParams(config, ctx.TriggerData))
	if err != nil {
		return nil, err
	}
	if len(conf.OwnerId) == 0 {
		return nil, fmt.Errorf("ownerId can not be empty")
	}
	if err := a.contacts.Reassign(ctx.TenantId, ctx.EntityId, conf.OwnerId); err != nil {
		return nil, err
	}
	return map[string]any{"ownerId": conf.OwnerId}, nil
}
