package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-catalog-admin-be/internal/dto"
	"ai-catalog-admin-be/internal/entity"
	"ai-catalog-admin-be/internal/pkg/logger"
	"ai-catalog-admin-be/internal/repository/contract"
	"ai-catalog-admin-be/pkg/events"
	pktNats "ai-catalog-admin-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the persisted-entry topic: each message becomes an
// audit row and, when NATS is configured, an external event. Client
// notification happens on the NATS side so that entries persisted by any
// instance reach every dashboard.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	audits         contract.AuditRepository
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	audits contract.AuditRepository,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		audits:         audits,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.EntryPersistedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer_service", "failed to unmarshal message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.logger.Info("consumer_service", "processing persisted entry", map[string]interface{}{
		"session_id": payload.SessionId,
		"product_id": payload.ProductId,
	})

	if cs.audits != nil {
		err := cs.audits.Create(ctx, &entity.CatalogAuditLog{
			Id:        uuid.New(),
			SessionId: payload.SessionId,
			ProductId: payload.ProductId,
			Name:      payload.Name,
			Status:    payload.Status,
			Edited:    payload.Edited,
			CreatedAt: time.Now(),
		})
		if err != nil {
			cs.logger.Error("consumer_service", "failed to write audit log", map[string]interface{}{
				"product_id": payload.ProductId,
				"error":      err.Error(),
			})
			// fall through: the notification still goes out
		}
	}

	if cs.eventPublisher != nil {
		event := events.NewCatalogEntryPersisted(payload.SessionId, payload.ProductId, payload.Name, payload.Status, payload.Edited)
		if err := cs.eventPublisher.Publish(ctx, event); err != nil {
			cs.logger.Warn("consumer_service", "failed to forward event to NATS", map[string]interface{}{
				"product_id": payload.ProductId,
				"error":      err.Error(),
			})
		}
	}

	msg.Ack()
}
