package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-catalog-admin-be/internal/model"
	"ai-catalog-admin-be/internal/pkg/logger"
	"ai-catalog-admin-be/pkg/events"
	pktNats "ai-catalog-admin-be/pkg/nats"
)

// EventDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type EventDelivery interface {
	Broadcast(event model.AssistantEvent)
}

// ListenerService bridges the NATS event bus to connected admin clients.
// Every instance publishes persisted-entry events to NATS; the listener
// fans them back out over WebSocket, so dashboards see entries persisted
// by any instance.
type ListenerService struct {
	subscriber *pktNats.Subscriber
	delivery   EventDelivery
	logger     logger.ILogger
}

func NewListenerService(sub *pktNats.Subscriber, delivery EventDelivery, log logger.ILogger) *ListenerService {
	return &ListenerService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *ListenerService) Start() {
	subject := "events." + events.TypeCatalogEntryPersisted
	err := s.subscriber.Subscribe(subject, "catalog-events-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("listener_service", "failed to start event subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("listener_service", "listening to "+subject, nil)
}

func (s *ListenerService) handleEvent(_ context.Context, event events.Event) error {
	payload := event.Payload()

	name, _ := payload["name"].(string)
	status, _ := payload["status"].(string)
	sessionId, _ := payload["session_id"].(string)
	edited, _ := payload["edited"].(bool)

	verb := "created"
	if edited {
		verb = "updated"
	}

	s.delivery.Broadcast(model.AssistantEvent{
		Type:      model.AssistantEventEntryPersisted,
		SessionId: sessionId,
		Title:     "Catalog entry " + verb,
		Message:   fmt.Sprintf("%q was %s (%s).", name, verb, status),
		Metadata: map[string]interface{}{
			"product_id": payload["product_id"],
			"status":     status,
			"event_type": strings.TrimPrefix(event.EventType(), "events."),
			"occurred":   time.Now(),
		},
		CreatedAt: time.Now(),
	})
	return nil
}
