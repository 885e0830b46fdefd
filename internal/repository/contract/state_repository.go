package contract

import (
	"context"

	"ai-catalog-admin-be/pkg/store"
)

// StateRepository is the conversation state store. Load returns a fresh
// default state when none exists; callers are responsible for serializing
// read-modify-write cycles per session.
type StateRepository interface {
	Load(ctx context.Context, sessionId string) (*store.ConversationState, error)
	Save(ctx context.Context, state *store.ConversationState) error
	Delete(ctx context.Context, sessionId string) error
}
