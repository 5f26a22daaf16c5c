package app

import (
	"context"

	"talk_message_service/internal/message/domain"
	"talk_message_service/internal/message/repository"
)

// FanoutSubscriber bridges the pub/sub feed into the connection registry.
// One feed covers every conversation; the conversation id embedded in the
// channel name routes each event to the right connections.
type FanoutSubscriber struct {
	pubsub   *repository.RedisPubSub
	registry *ConnectionRegistry
}

// NewFanoutSubscriber create FanoutSubscriber
func NewFanoutSubscriber(pubsub *repository.RedisPubSub, registry *ConnectionRegistry) *FanoutSubscriber {
	return &FanoutSubscriber{
		pubsub:   pubsub,
		registry: registry,
	}
}

// Run subscribes the chat, group and call patterns and broadcasts every
// event until ctx is cancelled.
func (s *FanoutSubscriber) Run(ctx context.Context) error {
	return s.pubsub.SubscribeAll(ctx, func(conversationID string, payload []byte) {
		s.registry.Broadcast(conversationID, payload)
	}, domain.PatternDirect, domain.PatternGroup, domain.PatternCall)
}
