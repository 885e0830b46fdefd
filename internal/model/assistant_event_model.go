package model

import "time"

// AssistantEvent is the payload pushed to connected admin clients over the
// WebSocket hub: either an assistant turn reply or a catalog persistence
// notification.
type AssistantEvent struct {
	Type      string                 `json:"type"` // "turn_reply" | "entry_persisted"
	SessionId string                 `json:"session_id"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

const (
	AssistantEventTurnReply      = "turn_reply"
	AssistantEventEntryPersisted = "entry_persisted"
)
