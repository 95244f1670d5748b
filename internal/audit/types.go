package audit

import "time"

// Actions.
const (
	ActionCreate     = "create"
	ActionUpdateArea = "update_area"
	ActionSync       = "sync"
)

// Entity types.
const (
	EntityTechnician = "technician"
	EntityInventory  = "inventory"
)

// Sources.
const (
	SourceAPI  = "api"
	SourceMQTT = "mqtt"
)

// Entry is one audit trail row.
type Entry struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id,omitempty"`
	ActorID    string         `json:"actor_id,omitempty"`
	Source     string         `json:"source"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Filter controls which entries List returns. Empty fields match anything.
type Filter struct {
	Action     string
	EntityType string
	EntityID   string
	ActorID    string
	Limit      int // default 50, max 200
	Offset     int
}

// ListResult is one page of entries, most recent first.
type ListResult struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}
