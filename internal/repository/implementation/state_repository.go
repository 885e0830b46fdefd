package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ai-catalog-admin-be/internal/entity"
	"ai-catalog-admin-be/internal/repository/contract"
	"ai-catalog-admin-be/pkg/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StateRepository persists conversation state as one database row per
// session, JSON columns for the structured fields.
type StateRepository struct {
	db *gorm.DB
}

var _ contract.StateRepository = &StateRepository{}

func NewStateRepository(db *gorm.DB) *StateRepository {
	return &StateRepository{db: db}
}

func (r *StateRepository) Load(ctx context.Context, sessionId string) (*store.ConversationState, error) {
	var record entity.ConversationStateRecord
	err := r.db.WithContext(ctx).First(&record, "session_id = ?", sessionId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.NewConversationState(sessionId), nil
	}
	if err != nil {
		return nil, err
	}
	return recordToState(&record)
}

func (r *StateRepository) Save(ctx context.Context, state *store.ConversationState) error {
	record, err := stateToRecord(state)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			UpdateAll: true,
		}).
		Create(record).Error
}

func (r *StateRepository) Delete(ctx context.Context, sessionId string) error {
	return r.db.WithContext(ctx).
		Delete(&entity.ConversationStateRecord{}, "session_id = ?", sessionId).Error
}

func stateToRecord(state *store.ConversationState) (*entity.ConversationStateRecord, error) {
	facts, err := json.Marshal(state.Facts)
	if err != nil {
		return nil, err
	}
	pending, err := json.Marshal(state.PendingImages)
	if err != nil {
		return nil, err
	}
	uploaded, err := json.Marshal(state.UploadedImages)
	if err != nil {
		return nil, err
	}
	generated, err := json.Marshal(state.Generated)
	if err != nil {
		return nil, err
	}

	return &entity.ConversationStateRecord{
		SessionId:      state.SessionId,
		Phase:          string(state.Phase),
		Facts:          facts,
		PendingImages:  pending,
		UploadedImages: uploaded,
		Generated:      generated,
		EditTargetId:   state.EditTargetId,
		EditSeeded:     state.EditSeeded,
		LastError:      state.LastError,
		UpdatedAt:      time.Now(),
	}, nil
}

func recordToState(record *entity.ConversationStateRecord) (*store.ConversationState, error) {
	state := &store.ConversationState{
		SessionId:    record.SessionId,
		Phase:        store.Phase(record.Phase),
		Facts:        make(map[string]string),
		EditTargetId: record.EditTargetId,
		EditSeeded:   record.EditSeeded,
		LastError:    record.LastError,
		UpdatedAt:    record.UpdatedAt,
	}

	if len(record.Facts) > 0 {
		if err := json.Unmarshal(record.Facts, &state.Facts); err != nil {
			return nil, err
		}
	}
	if len(record.PendingImages) > 0 {
		if err := json.Unmarshal(record.PendingImages, &state.PendingImages); err != nil {
			return nil, err
		}
	}
	if len(record.UploadedImages) > 0 {
		if err := json.Unmarshal(record.UploadedImages, &state.UploadedImages); err != nil {
			return nil, err
		}
	}
	if len(record.Generated) > 0 && string(record.Generated) != "null" {
		if err := json.Unmarshal(record.Generated, &state.Generated); err != nil {
			return nil, err
		}
	}
	if state.Facts == nil {
		state.Facts = make(map[string]string)
	}
	return state, nil
}
