package implementation

import (
	"context"

	"ai-catalog-admin-be/internal/entity"

	"gorm.io/gorm"
)

// TurnRepository stores the append-only conversation turn log.
type TurnRepository struct {
	db *gorm.DB
}

func NewTurnRepository(db *gorm.DB) *TurnRepository {
	return &TurnRepository{db: db}
}

func (r *TurnRepository) Create(ctx context.Context, turn *entity.ConversationTurn) error {
	return r.db.WithContext(ctx).Create(turn).Error
}

func (r *TurnRepository) FindBySessionId(ctx context.Context, sessionId string) ([]entity.ConversationTurn, error) {
	var turns []entity.ConversationTurn
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Order("created_at asc").
		Find(&turns).Error
	return turns, err
}

func (r *TurnRepository) DeleteBySessionId(ctx context.Context, sessionId string) error {
	return r.db.WithContext(ctx).
		Delete(&entity.ConversationTurn{}, "session_id = ?", sessionId).Error
}
