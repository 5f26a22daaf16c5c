package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"talk_message_service/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// FanoutPublisher definition fire-and-forget event publish
type FanoutPublisher interface {
	Publish(channel string, message interface{}) error
}

// RedisPubSub definition redis pub/sub fanout
type RedisPubSub struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{
		client: client,
		ctx:    context.Background(),
	}
}

// Publish marshals message and publishes it on channel. The caller never
// waits on subscriber I/O.
func (r *RedisPubSub) Publish(channel string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return r.client.Publish(r.ctx, channel, data).Err()
}

// SubscribeAll pattern-subscribes the given channel patterns and feeds every
// payload to handler together with the conversation id demultiplexed from
// the channel name ({kind}:{conversation_id}).
func (r *RedisPubSub) SubscribeAll(ctx context.Context, handler func(conversationID string, payload []byte), patterns ...string) error {
	sub := r.client.PSubscribe(r.ctx, patterns...)
	go func() {
		ch := sub.Channel()

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}

				parts := strings.SplitN(m.Channel, ":", 2)
				if len(parts) != 2 {
					logger.Log.Warn(fmt.Sprintf("unexpected pubsub channel: %s", m.Channel))
					continue
				}
				handler(parts[1], []byte(m.Payload))
			case <-ctx.Done():
				logger.Log.Info(fmt.Sprintf("%v , sub close", patterns))
				sub.Close()
				return
			}
		}
	}()
	return nil
}
