package entity

import (
	"time"

	"gorm.io/datatypes"
)

// ConversationStateRecord is the database row backing one chat session's
// state. JSON columns mirror the in-memory shape so load/save is a plain
// marshal round trip.
type ConversationStateRecord struct {
	SessionId      string `gorm:"primaryKey"`
	Phase          string
	Facts          datatypes.JSON
	PendingImages  datatypes.JSON
	UploadedImages datatypes.JSON
	Generated      datatypes.JSON
	EditTargetId   *int64
	EditSeeded     bool
	LastError      string
	UpdatedAt      time.Time
}

func (ConversationStateRecord) TableName() string {
	return "conversation_states"
}
