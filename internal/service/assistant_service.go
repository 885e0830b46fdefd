package service

import (
	"context"
	"time"

	"ai-catalog-admin-be/internal/dto"
	"ai-catalog-admin-be/internal/entity"
	"ai-catalog-admin-be/internal/model"
	"ai-catalog-admin-be/internal/pkg/logger"
	"ai-catalog-admin-be/internal/repository/contract"
	"ai-catalog-admin-be/internal/websocket"
	"ai-catalog-admin-be/pkg/dialogue"
	"ai-catalog-admin-be/pkg/store"

	"github.com/google/uuid"
)

type IAssistantService interface {
	CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error)
	SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	GetHistory(ctx context.Context, sessionId string) (*dto.SessionHistoryResponse, error)
	ClearSession(ctx context.Context, sessionId string) error
}

// assistantService owns the per-turn lifecycle around the dialogue
// controller: session locking, state load/save, the turn log, WebSocket
// pushes and the persisted-entry event.
type assistantService struct {
	locks            *dialogue.SessionLocks
	controller       *dialogue.Controller
	states           contract.StateRepository
	turns            contract.TurnRepository
	hub              *websocket.Hub
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewAssistantService(
	controller *dialogue.Controller,
	states contract.StateRepository,
	turns contract.TurnRepository,
	hub *websocket.Hub,
	publisherService IPublisherService,
	log logger.ILogger,
) IAssistantService {
	return &assistantService{
		locks:            dialogue.NewSessionLocks(),
		controller:       controller,
		states:           states,
		turns:            turns,
		hub:              hub,
		publisherService: publisherService,
		logger:           log,
	}
}

func (s *assistantService) CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error) {
	sessionId := uuid.New().String()
	if err := s.states.Save(ctx, store.NewConversationState(sessionId)); err != nil {
		return nil, err
	}
	s.logger.Info("assistant_service", "session created", map[string]interface{}{
		"session_id": sessionId,
	})
	return &dto.CreateSessionResponse{SessionId: sessionId}, nil
}

// SendMessage runs one turn. Turns within a session are serialized: a second
// message for the same session blocks until the first completes and then
// observes its resulting state.
func (s *assistantService) SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	unlock := s.locks.Lock(req.SessionId)
	defer unlock()

	state, err := s.states.Load(ctx, req.SessionId)
	if err != nil {
		return nil, err
	}

	edited := state.EditTargetId != nil || req.EditTargetId != nil

	in := dialogue.TurnInput{
		SessionId:    req.SessionId,
		Text:         req.Text,
		Images:       toImageRefs(req.Images),
		EditTargetId: req.EditTargetId,
	}
	result := s.controller.HandleTurn(ctx, state, in)

	if err := s.states.Save(ctx, state); err != nil {
		return nil, err
	}

	s.logTurn(ctx, req.SessionId, "user", req.Text, "")
	s.logTurn(ctx, req.SessionId, "assistant", result.Reply, string(result.Phase))

	s.hub.Broadcast(model.AssistantEvent{
		Type:      model.AssistantEventTurnReply,
		SessionId: req.SessionId,
		Title:     "Assistant",
		Message:   result.Reply,
		Metadata:  map[string]interface{}{"phase": string(result.Phase)},
		CreatedAt: time.Now(),
	})

	if result.Persisted != nil {
		msg := dto.EntryPersistedMessage{
			SessionId: req.SessionId,
			ProductId: result.Persisted.Id,
			Name:      result.Persisted.Name,
			Status:    result.Persisted.Status,
			Edited:    edited,
		}
		if err := s.publisherService.PublishEntryPersisted(ctx, msg); err != nil {
			s.logger.Warn("assistant_service", "failed to publish entry persisted event", map[string]interface{}{
				"session_id": req.SessionId,
				"error":      err.Error(),
			})
		}
	}

	return &dto.SendMessageResponse{
		SessionId:        req.SessionId,
		Reply:            result.Reply,
		SuggestedActions: result.SuggestedActions,
		Phase:            string(result.Phase),
	}, nil
}

func (s *assistantService) GetHistory(ctx context.Context, sessionId string) (*dto.SessionHistoryResponse, error) {
	resp := &dto.SessionHistoryResponse{SessionId: sessionId, Turns: []dto.TurnDTO{}}
	if s.turns == nil {
		return resp, nil
	}
	turns, err := s.turns.FindBySessionId(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	for _, t := range turns {
		resp.Turns = append(resp.Turns, dto.TurnDTO{
			Role:      t.Role,
			Text:      t.Text,
			Phase:     t.Phase,
			CreatedAt: t.CreatedAt,
		})
	}
	return resp, nil
}

func (s *assistantService) ClearSession(ctx context.Context, sessionId string) error {
	unlock := s.locks.Lock(sessionId)
	defer unlock()

	if err := s.states.Delete(ctx, sessionId); err != nil {
		return err
	}
	if s.turns != nil {
		if err := s.turns.DeleteBySessionId(ctx, sessionId); err != nil {
			s.logger.Warn("assistant_service", "failed to clear turn log", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
		}
	}
	return nil
}

// logTurn appends to the turn log when one is configured. A logging failure
// never fails the turn.
func (s *assistantService) logTurn(ctx context.Context, sessionId, role, text, phase string) {
	if s.turns == nil || text == "" {
		return
	}
	err := s.turns.Create(ctx, &entity.ConversationTurn{
		Id:        uuid.New(),
		SessionId: sessionId,
		Role:      role,
		Text:      text,
		Phase:     phase,
		CreatedAt: time.Now(),
	})
	if err != nil {
		s.logger.Warn("assistant_service", "failed to log turn", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
}

func toImageRefs(in []dto.ImageRefDTO) []store.ImageRef {
	refs := make([]store.ImageRef, 0, len(in))
	for _, img := range in {
		refs = append(refs, store.ImageRef{
			DataURI:  img.DataURI,
			URL:      img.URL,
			MediaId:  img.MediaId,
			MediaURL: img.MediaURL,
			AltText:  img.AltText,
			Filename: img.Filename,
		})
	}
	return refs
}
