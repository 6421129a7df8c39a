package crm

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

type InMemContactService struct {
	mu       sync.Mutex
	contacts map[string]*Contact
}

var _ ContactService = new(InMemContactService)

func NewInMemContactService() *InMemContactService {
	return &InMemContactService{contacts: make(map[string]*Contact)}
}

func (s *InMemContactService) Put(contact Contact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if contact.Fields == nil {
		contact.Fields = make(map[string]any)
	}
	s.contacts[contact.TenantId+":"+contact.Id] = &contact
}

func (s *InMemContactService) get(tenantId string, id string) (*Contact, error) {
	contact, ok := s.contacts[tenantId+":"+id]
	if !ok {
		return nil, fmt.Errorf("contact %s not found", id)
	}
	return contact, nil
}

func (s *InMemContactService) Get(tenantId string, id string) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contact, err := s.get(tenantId, id)
	if err != nil {
		return nil, err
	}
	copied := *contact
	copied.Tags = append([]string(nil), contact.Tags...)
	return &copied, nil
}

func (s *InMemContactService) UpdateField(tenantId string, id string, field string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	contact, err := s.get(tenantId, id)
	if err != nil {
		return err
	}
	contact.Fields[field] = value
	return nil
}

func (s *InMemContactService) ChangeStage(tenantId string, id string, stage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	contact, err := s.get(tenantId, id)
	if err != nil {
		return err
	}
	contact.Stage = stage
	return nil
}

func (s *InMemContactService) AddTag(tenantId string, id string, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	contact, err := s.get(tenantId, id)
	if err != nil {
		return err
	}
	for _, existing := range contact.Tags {
		if existing == tag {
			return nil
		}
	}
	contact.Tags = append(contact.Tags, tag)
	return nil
}

func (s *InMemContactService) AdjustLeadScore(tenantId string, id string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contact, err := s.get(tenantId, id)
	if err != nil {
		return 0, err
	}
	contact.LeadScore += delta
	return contact.LeadScore, nil
}

func (s *InMemContactService) Reassign(tenantId string, id string, ownerId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	contact, err := s.get(tenantId, id)
	if err != nil {
		return err
	}
	contact.OwnerId = ownerId
	return nil
}

type InMemDealService struct {
	mu    sync.Mutex
	deals map[string]*Deal
}

var _ DealService = new(InMemDealService)

func NewInMemDealService() *InMemDealService {
	return &InMemDealService{deals: make(map[string]*Deal)}
}

func (s *InMemDealService) Put(deal Deal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if deal.Fields == nil {
		deal.Fields = make(map[string]any)
	}
	s.deals[deal.TenantId+":"+deal.Id] = &deal
}

func (s *InMemDealService) Create(deal Deal) (*Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if deal.Id == "" {
		deal.Id = uuid.NewString()
	}
	if deal.Fields == nil {
		deal.Fields = make(map[string]any)
	}
	s.deals[deal.TenantId+":"+deal.Id] = &deal
	copied := deal
	return &copied, nil
}

func (s *InMemDealService) get(tenantId string, id string) (*Deal, error) {
	deal, ok := s.deals[tenantId+":"+id]
	if !ok {
		return nil, fmt.Errorf("deal %s not found", id)
	}
	return deal, nil
}

func (s *InMemDealService) Get(tenantId string, id string) (*Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deal, err := s.get(tenantId, id)
	if err != nil {
		return nil, err
	}
	copied := *deal
	return &copied, nil
}

func (s *InMemDealService) UpdateField(tenantId string, id string, field string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	deal, err := s.get(tenantId, id)
	if err != nil {
		return err
	}
	deal.Fields[field] = value
	return nil
}

func (s *InMemDealService) ChangeStage(tenantId string, id string, stage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	deal, err := s.get(tenantId, id)
	if err != nil {
		return err
	}
	deal.Stage = stage
	return nil
}

type InMemTaskService struct {
	mu    sync.Mutex
	tasks []Task
}

var _ TaskService = new(InMemTaskService)

func NewInMemTaskService() *InMemTaskService {
	return &InMemTaskService{}
}

func (s *InMemTaskService) Create(task Task) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task.Id == "" {
		task.Id = uuid.NewString()
	}
	s.tasks = append(s.tasks, task)
	copied := task
	return &copied, nil
}

func (s *InMemTaskService) Tasks(tenantId string) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Task
	for _, task := range s.tasks {
		if task.TenantId == tenantId {
			out = append(out, task)
		}
	}
	return out
}

// The in-memory senders collect outbound messages so tests and the memory
// mode can inspect what would have been delivered.

type InMemEmailSender struct {
	mu     sync.Mutex
	Emails []EmailMessage
}

var _ EmailSender = new(InMemEmailSender)

func NewInMemEmailSender() *InMemEmailSender {
	return &InMemEmailSender{}
}

func (s *InMemEmailSender) Send(tenantId string, msg EmailMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Emails = append(s.Emails, msg)
	return nil
}

type InMemChatMessenger struct {
	mu       sync.Mutex
	Messages []ChatMessage
}

var _ ChatMessenger = new(InMemChatMessenger)

func NewInMemChatMessenger() *InMemChatMessenger {
	return &InMemChatMessenger{}
}

func (s *InMemChatMessenger) Send(tenantId string, msg ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, msg)
	return nil
}

type InMemNotifier struct {
	mu            sync.Mutex
	Notifications []Notification
}

var _ Notifier = new(InMemNotifier)

func NewInMemNotifier() *InMemNotifier {
	return &InMemNotifier{}
}

func (s *InMemNotifier) Notify(tenantId string, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Notifications = append(s.Notifications, n)
	return nil
}
