package crm

import "time"

// Tenant-scoped collaborators the action handlers mutate CRM data through.
// The surrounding application supplies real implementations; the in-memory
// ones here back the agent's memory storage mode and the tests.

type Contact struct {
	Id        string         `json:"id"`
	TenantId  string         `json:"tenantId"`
	Email     string         `json:"email"`
	Stage     string         `json:"stage"`
	OwnerId   string         `json:"ownerId"`
	LeadScore int            `json:"leadScore"`
	Tags      []string       `json:"tags"`
	Fields    map[string]any `json:"fields"`
}

type Deal struct {
	Id        string         `json:"id"`
	TenantId  string         `json:"tenantId"`
	Name      string         `json:"name"`
	Stage     string         `json:"stage"`
	Amount    float64        `json:"amount"`
	ContactId string         `json:"contactId"`
	Fields    map[string]any `json:"fields"`
}

type Task struct {
	Id          string    `json:"id"`
	TenantId    string    `json:"tenantId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AssigneeId  string    `json:"assigneeId"`
	EntityType  string    `json:"entityType"`
	EntityId    string    `json:"entityId"`
	DueAt       time.Time `json:"dueAt"`
}

type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type ChatMessage struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

type Notification struct {
	UserId  string `json:"userId"`
	Message string `json:"message"`
}

type ContactService interface {
	Get(tenantId string, id string) (*Contact, error)
	UpdateField(tenantId string, id string, field string, value any) error
	ChangeStage(tenantId string, id string, stage string) error
	AddTag(tenantId string, id string, tag string) error
	AdjustLeadScore(tenantId string, id string, delta int) (int, error)
	Reassign(tenantId string, id string, ownerId string) error
}

type DealService interface {
	Create(deal Deal) (*Deal, error)
	UpdateField(tenantId string, id string, field string, value any) error
	ChangeStage(tenantId string, id string, stage string) error
}

type TaskService interface {
	Create(task Task) (*Task, error)
}

type EmailSender interface {
	Send(tenantId string, msg EmailMessage) error
}

type ChatMessenger interface {
	Send(tenantId string, msg ChatMessage) error
}

type Notifier interface {
	Notify(tenantId string, n Notification) error
}
