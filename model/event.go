package model

// TriggerEvent is reported by a domain write path after its own commit
// succeeded. Data is a snapshot of the event payload.
type TriggerEvent struct {
	TenantId    string         `json:"tenantId"`
	TriggerType TriggerType    `json:"triggerType"`
	EntityType  EntityType     `json:"entityType"`
	EntityId    string         `json:"entityId"`
	Data        map[string]any `json:"data,omitempty"`
}
