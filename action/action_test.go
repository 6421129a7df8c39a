package action

import (
	"testing"

	"github.com/crmkit/automation/crm"
	"github.com/crmkit/automation/model"
	"github.com/stretchr/testify/require"
)

func newTestServices() (Services, *crm.InMemContactService, *crm.InMemTaskService) {
	contacts := crm.NewInMemContactService()
	tasks := crm.NewInMemTaskService()
	services := Services{
		Contacts: contacts,
		Deals:    crm.NewInMemDealService(),
		Tasks:    tasks,
		Email:    crm.NewInMemEmailSender(),
		Chat:     crm.NewInMemChatMessenger(),
		Notifier: crm.NewInMemNotifier(),
	}
	return services, contacts, tasks
}

func TestRegistryResolve(t *testing.T) {
	services, _, _ := newTestServices()
	registry := DefaultRegistry(services)

	h, err := registry.Resolve(model.ACTION_ADD_TAG)
	require.NoError(t, err)
	require.Equal(t, model.ACTION_ADD_TAG, h.Type())

	_, err = registry.Resolve(model.ActionType("SOMETHING_ELSE"))
	require.Error(t, err)
}

func TestAddTagAction(t *testing.T) {
	services, contacts, _ := newTestServices()
	contacts.Put(crm.Contact{Id: "c1", TenantId: "t1"})
	registry := DefaultRegistry(services)

	h, err := registry.Resolve(model.ACTION_ADD_TAG)
	require.NoError(t, err)

	ctx := Context{TenantId: "t1", EntityType: model.ENTITY_CONTACT, EntityId: "c1"}
	result, err := h.Execute(ctx, map[string]any{"tag": "vip"})
	require.NoError(t, err)
	require.Equal(t, "vip", result["tag"])

	contact, err := contacts.Get("t1", "c1")
	require.NoError(t, err)
	require.Contains(t, contact.Tags, "vip")
}

func TestAddTagActionRejectsWrongEntity(t *testing.T) {
	services, _, _ := newTestServices()
	registry := DefaultRegistry(services)

	h, err := registry.Resolve(model.ACTION_ADD_TAG)
	require.NoError(t, err)

	ctx := Context{TenantId: "t1", EntityType: model.ENTITY_DEAL, EntityId: "d1"}
	_, err = h.Execute(ctx, map[string]any{"tag": "vip"})
	require.Error(t, err)
}

func TestAddTagActionEmptyTag(t *testing.T) {
	services, contacts, _ := newTestServices()
	contacts.Put(crm.Contact{Id: "c1", TenantId: "t1"})
	registry := DefaultRegistry(services)

	h, err := registry.Resolve(model.ACTION_ADD_TAG)
	require.NoError(t, err)

	ctx := Context{TenantId: "t1", EntityType: model.ENTITY_CONTACT, EntityId: "c1"}
	_, err = h.Execute(ctx, map[string]any{})
	require.Error(t, err)
}

func TestCreateTaskActionResolvesTriggerData(t *testing.T) {
	services, _, tasks := newTestServices()
	registry := DefaultRegistry(services)

	h, err := registry.Resolve(model.ACTION_CREATE_TASK)
	require.NoError(t, err)

	ctx := Context{
		TenantId:    "t1",
		EntityType:  model.ENTITY_CONTACT,
		EntityId:    "c1",
		TriggerData: map[string]any{"contact": map[string]any{"name": "Jo"}},
	}
	result, err := h.Execute(ctx, map[string]any{
		"title":      "Call {$.contact.name}",
		"assigneeId": "u7",
	})
	require.NoError(t, err)
	require.Equal(t, "Call Jo", result["title"])

	created := tasks.Tasks("t1")
	require.Len(t, created, 1)
	require.Equal(t, "Call Jo", created[0].Title)
	require.Equal(t, "c1", created[0].EntityId)
}

func TestAdjustLeadScoreAction(t *testing.T) {
	services, contacts, _ := newTestServices()
	contacts.Put(crm.Contact{Id: "c1", TenantId: "t1", LeadScore: 10})
	registry := DefaultRegistry(services)

	h, err := registry.Resolve(model.ACTION_ADJUST_LEAD_SCORE)
	require.NoError(t, err)

	ctx := Context{TenantId: "t1", EntityType: model.ENTITY_CONTACT, EntityId: "c1"}
	result, err := h.Execute(ctx, map[string]any{"delta": 5})
	require.NoError(t, err)
	require.Equal(t, 15, result["leadScore"])
}

func TestWaitActionIsNoop(t *testing.T) {
	services, _, _ := newTestServices()
	registry := DefaultRegistry(services)

	h, err := registry.Resolve(model.ACTION_WAIT)
	require.NoError(t, err)

	result, err := h.Execute(Context{TenantId: "t1"}, nil)
	require.NoError(t, err)
	require.Empty(t, result)
}
