package action

import (
	"fmt"

	"github.com/crmkit/automation/crm"
	"github.com/crmkit/automation/model"
)

// Context carries the tenant and target entity an action runs against,
// plus the trigger payload snapshot for config token resolution.
type Context struct {
	TenantId    string
	EntityType  model.EntityType
	EntityId    string
	TriggerData map[string]any
	ExecutionId string
}

// Handler executes one action kind. The result payload is opaque to the
// engine and stored verbatim in the execution log. Handlers never swallow
// their own failures; the engine records them.
type Handler interface {
	Type() model.ActionType
	Execute(ctx Context, config map[string]any) (map[string]any, error)
}

type Registry struct {
	handlers map[model.ActionType]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[model.ActionType]Handler)}
}

func (r *Registry) Register(h Handler) {
	r.handlers[h.Type()] = h
}

// Resolve fails closed on unknown action types.
func (r *Registry) Resolve(t model.ActionType) (Handler, error) {
	h, ok := r.handlers[t]
	if !ok {
		return nil, fmt.Errorf("no handler registered for action type %s", t)
	}
	return h, nil
}

// Services groups the outbound collaborators the built-in handlers need.
type Services struct {
	Contacts crm.ContactService
	Deals    crm.DealService
	Tasks    crm.TaskService
	Email    crm.EmailSender
	Chat     crm.ChatMessenger
	Notifier crm.Notifier
}

// DefaultRegistry registers every built-in action kind.
func DefaultRegistry(s Services) *Registry {
	r := NewRegistry()
	r.Register(NewUpdateContactFieldAction(s.Contacts))
	r.Register(NewChangeContactStageAction(s.Contacts))
	r.Register(NewAddTagAction(s.Contacts))
	r.Register(NewAdjustLeadScoreAction(s.Contacts))
	r.Register(NewReassignContactAction(s.Contacts))
	r.Register(NewCreateDealAction(s.Deals))
	r.Register(NewUpdateDealFieldAction(s.Deals))
	r.Register(NewChangeDealStageAction(s.Deals))
	r.Register(NewCreateTaskAction(s.Tasks))
	r.Register(NewSendEmailAction(s.Email))
	r.Register(NewSendChatMessageAction(s.Chat))
	r.Register(NewNotifyAction(s.Notifier))
	r.Register(NewWaitAction())
	return r
}

func requireEntity(ctx Context, expected model.EntityType) error {
	if ctx.EntityType != expected {
		return fmt.Errorf("action requires a %s entity, got %s", expected, ctx.EntityType)
	}
	return nil
}
