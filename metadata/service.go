package metadata

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	c "github.com/patrickmn/go-cache"
	"github.com/crmkit/automation/model"
	"github.com/crmkit/automation/persistence"
)

// Service is the authoring-side glue over the definition store: validation on
// write, cached trigger lookups for the dispatcher.
type Service struct {
	workflows persistence.WorkflowRepository
	cache     *c.Cache
}

func NewService(workflows persistence.WorkflowRepository) *Service {
	return &Service{
		workflows: workflows,
		cache:     c.New(30*time.Second, 1*time.Minute),
	}
}

func (s *Service) Save(wf model.Workflow) (*model.Workflow, error) {
	if err := s.Validate(wf); err != nil {
		return nil, err
	}
	if len(wf.Id) == 0 {
		wf.Id = uuid.NewString()
	}
	if wf.CreatedAt.IsZero() {
		wf.CreatedAt = time.Now()
	}
	if err := s.workflows.Save(wf); err != nil {
		return nil, err
	}
	s.cache.Flush()
	return &wf, nil
}

func (s *Service) Get(tenantId string, id string) (*model.Workflow, error) {
	return s.workflows.Get(tenantId, id)
}

func (s *Service) Delete(tenantId string, id string) error {
	if err := s.workflows.Delete(tenantId, id); err != nil {
		return err
	}
	s.cache.Flush()
	return nil
}

func (s *Service) FindByTrigger(tenantId string, trigger model.TriggerType) ([]model.Workflow, error) {
	key := tenantId + ":" + string(trigger)
	if cached, found := s.cache.Get(key); found {
		return cached.([]model.Workflow), nil
	}
	workflows, err := s.workflows.FindByTrigger(tenantId, trigger)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, workflows, c.DefaultExpiration)
	return workflows, nil
}

func (s *Service) Validate(wf model.Workflow) error {
	if len(wf.TenantId) == 0 {
		return fmt.Errorf("workflow tenantId can not be empty")
	}
	if len(wf.Name) == 0 {
		return fmt.Errorf("workflow name can not be empty")
	}
	if !model.ValidTriggerType(wf.TriggerType) {
		return fmt.Errorf("invalid trigger type %s", wf.TriggerType)
	}
	if len(wf.Actions) == 0 {
		return fmt.Errorf("workflow %s has no actions", wf.Name)
	}
	if wf.MaxRuns < 0 {
		return fmt.Errorf("maxRuns can not be negative")
	}
	orders := make(map[int]bool)
	for _, act := range wf.Actions {
		if !model.ValidActionType(act.Type) {
			return fmt.Errorf("invalid action type %s", act.Type)
		}
		if act.DelayMinutes < 0 {
			return fmt.Errorf("action %s has negative delay", act.Name)
		}
		if orders[act.Order] {
			return fmt.Errorf("duplicate action order %d", act.Order)
		}
		orders[act.Order] = true
	}
	return nil
}
