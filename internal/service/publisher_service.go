package service

import (
	"context"
	"encoding/json"

	"ai-catalog-admin-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IPublisherService publishes in-process events on the watermill bus.
type IPublisherService interface {
	PublishEntryPersisted(ctx context.Context, payload dto.EntryPersistedMessage) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (ps *publisherService) PublishEntryPersisted(_ context.Context, payload dto.EntryPersistedMessage) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	return ps.pubSub.Publish(ps.topicName, msg)
}
