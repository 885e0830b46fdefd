package memory

import (
	"context"
	"time"

	"ai-catalog-admin-be/internal/repository/contract"
	"ai-catalog-admin-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// StateRepository keeps conversation state in process memory. Suitable for
// single-instance deployments and tests; state evaporates after the TTL.
type StateRepository struct {
	cache *cache.Cache
}

var _ contract.StateRepository = &StateRepository{}

func NewStateRepository() *StateRepository {
	// Sessions idle for a day are dropped; expired items purged every hour.
	c := cache.New(24*time.Hour, 1*time.Hour)
	return &StateRepository{
		cache: c,
	}
}

func (r *StateRepository) Load(_ context.Context, sessionId string) (*store.ConversationState, error) {
	if x, found := r.cache.Get(sessionId); found {
		return x.(*store.ConversationState), nil
	}
	return store.NewConversationState(sessionId), nil
}

func (r *StateRepository) Save(_ context.Context, state *store.ConversationState) error {
	r.cache.Set(state.SessionId, state, cache.DefaultExpiration)
	return nil
}

func (r *StateRepository) Delete(_ context.Context, sessionId string) error {
	r.cache.Delete(sessionId)
	return nil
}
