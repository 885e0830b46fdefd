package entity

import (
	"time"

	"github.com/google/uuid"
)

// ConversationTurn is one logged message of a session, user or assistant.
type ConversationTurn struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionId string    `gorm:"index"`
	Role      string
	Text      string
	Phase     string
	CreatedAt time.Time
}

func (ConversationTurn) TableName() string {
	return "conversation_turns"
}
