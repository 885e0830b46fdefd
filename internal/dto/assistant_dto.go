package dto

import "time"

// ImageRefDTO is one inbound image reference: exactly one of data_uri or
// url, or a media_id for an already-uploaded image being reused.
type ImageRefDTO struct {
	DataURI  string `json:"data_uri,omitempty"`
	URL      string `json:"url,omitempty" validate:"omitempty,url"`
	MediaId  int64  `json:"media_id,omitempty"`
	MediaURL string `json:"media_url,omitempty"`
	AltText  string `json:"alt_text,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// SendMessageRequest is one widget turn.
type SendMessageRequest struct {
	SessionId    string        `json:"session_id" validate:"required"`
	Text         string        `json:"text"`
	Images       []ImageRefDTO `json:"images,omitempty" validate:"max=10,dive"`
	EditTargetId *int64        `json:"edit_target_id,omitempty"`
}

// SendMessageResponse is the assistant's reply for one turn.
type SendMessageResponse struct {
	SessionId        string   `json:"session_id"`
	Reply            string   `json:"reply"`
	SuggestedActions []string `json:"suggested_actions,omitempty"`
	Phase            string   `json:"phase"`
}

// CreateSessionResponse returns the id of a freshly created session.
type CreateSessionResponse struct {
	SessionId string `json:"session_id"`
}

// TurnDTO is one logged message in the history endpoint.
type TurnDTO struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Phase     string    `json:"phase,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionHistoryResponse is the persisted turn log of one session.
type SessionHistoryResponse struct {
	SessionId string    `json:"session_id"`
	Turns     []TurnDTO `json:"turns"`
}

// EntryPersistedMessage is the internal bus payload emitted after a catalog
// entry has been created or updated through the assistant.
type EntryPersistedMessage struct {
	SessionId string `json:"session_id"`
	ProductId int64  `json:"product_id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Edited    bool   `json:"edited"`
}
