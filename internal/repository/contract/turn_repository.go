package contract

import (
	"context"

	"ai-catalog-admin-be/internal/entity"
)

// TurnRepository is the append-only conversation turn log.
type TurnRepository interface {
	Create(ctx context.Context, turn *entity.ConversationTurn) error
	FindBySessionId(ctx context.Context, sessionId string) ([]entity.ConversationTurn, error)
	DeleteBySessionId(ctx context.Context, sessionId string) error
}
