package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"talk_message_service/internal/message/domain"

	"github.com/go-redis/redis/v8"
)

// HotMessageRepository definition per-conversation recent message buffer.
// Each call is atomic per key; callers serialize read-modify-write sections
// per conversation.
type HotMessageRepository interface {
	// Append pushes a message onto the conversation's tail
	Append(ctx context.Context, kind domain.ConversationKind, conversationID string, msg domain.Message) error
	// ReadAll returns the whole buffer in insertion order
	ReadAll(ctx context.Context, kind domain.ConversationKind, conversationID string) ([]domain.Message, error)
	// Last returns the newest message, nil when the buffer is empty
	Last(ctx context.Context, kind domain.ConversationKind, conversationID string) (*domain.Message, error)
	// Len returns the buffer length
	Len(ctx context.Context, kind domain.ConversationKind, conversationID string) (int64, error)
	// SetAt overwrites the message at index
	SetAt(ctx context.Context, kind domain.ConversationKind, conversationID string, index int64, msg domain.Message) error
	// TombstoneAt writes the deletion placeholder at index without shifting
	// other indices; Compact strips the placeholders afterwards
	TombstoneAt(ctx context.Context, kind domain.ConversationKind, conversationID string, index int64) error
	// Compact removes every tombstone placeholder
	Compact(ctx context.Context, kind domain.ConversationKind, conversationID string) error
	// ReplaceAll swaps the buffer content for msgs
	ReplaceAll(ctx context.Context, kind domain.ConversationKind, conversationID string, msgs []domain.Message) error
	// Clear drops the buffer
	Clear(ctx context.Context, kind domain.ConversationKind, conversationID string) error
	// ScanConversations lists conversation ids that currently own a buffer
	ScanConversations(ctx context.Context, kind domain.ConversationKind) ([]string, error)

	// SetUnseenFlag marks "messages were archived while unseen"
	SetUnseenFlag(ctx context.Context, kind domain.ConversationKind, conversationID string) error
	// HasUnseenFlag reports whether the flag is set
	HasUnseenFlag(ctx context.Context, kind domain.ConversationKind, conversationID string) (bool, error)
	// ClearUnseenFlag drops the flag
	ClearUnseenFlag(ctx context.Context, kind domain.ConversationKind, conversationID string) error
}

type redisHotRepository struct {
	client *redis.Client
}

// NewRedisHotRepository create a HotMessageRepository backed by redis lists
func NewRedisHotRepository(client *redis.Client) HotMessageRepository {
	return &redisHotRepository{client: client}
}

func (r *redisHotRepository) Append(ctx context.Context, kind domain.ConversationKind, conversationID string, msg domain.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return r.client.RPush(ctx, domain.HotKey(kind, conversationID), data).Err()
}

func (r *redisHotRepository) ReadAll(ctx context.Context, kind domain.ConversationKind, conversationID string) ([]domain.Message, error) {
	raw, err := r.client.LRange(ctx, domain.HotKey(kind, conversationID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	msgs := make([]domain.Message, 0, len(raw))
	for _, item := range raw {
		var msg domain.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal hot message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (r *redisHotRepository) Last(ctx context.Context, kind domain.ConversationKind, conversationID string) (*domain.Message, error) {
	raw, err := r.client.LIndex(ctx, domain.HotKey(kind, conversationID), -1).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var msg domain.Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal hot message: %w", err)
	}
	return &msg, nil
}

func (r *redisHotRepository) Len(ctx context.Context, kind domain.ConversationKind, conversationID string) (int64, error) {
	return r.client.LLen(ctx, domain.HotKey(kind, conversationID)).Result()
}

func (r *redisHotRepository) SetAt(ctx context.Context, kind domain.ConversationKind, conversationID string, index int64, msg domain.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return r.client.LSet(ctx, domain.HotKey(kind, conversationID), index, data).Err()
}

func (r *redisHotRepository) TombstoneAt(ctx context.Context, kind domain.ConversationKind, conversationID string, index int64) error {
	return r.client.LSet(ctx, domain.HotKey(kind, conversationID), index, domain.Tombstone).Err()
}

func (r *redisHotRepository) Compact(ctx context.Context, kind domain.ConversationKind, conversationID string) error {
	return r.client.LRem(ctx, domain.HotKey(kind, conversationID), 0, domain.Tombstone).Err()
}

func (r *redisHotRepository) ReplaceAll(ctx context.Context, kind domain.ConversationKind, conversationID string, msgs []domain.Message) error {
	key := domain.HotKey(kind, conversationID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return err
	}
	for _, msg := range msgs {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
		if err := r.client.RPush(ctx, key, data).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (r *redisHotRepository) Clear(ctx context.Context, kind domain.ConversationKind, conversationID string) error {
	return r.client.Del(ctx, domain.HotKey(kind, conversationID)).Err()
}

func (r *redisHotRepository) ScanConversations(ctx context.Context, kind domain.ConversationKind) ([]string, error) {
	keys, err := r.client.Keys(ctx, string(kind)+":*:messages").Result()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		parts := strings.Split(key, ":")
		if len(parts) < 3 {
			continue
		}
		ids = append(ids, parts[1])
	}
	return ids, nil
}

func (r *redisHotRepository) SetUnseenFlag(ctx context.Context, kind domain.ConversationKind, conversationID string) error {
	return r.client.Set(ctx, domain.UnseenFlagKey(kind, conversationID), 1, 0).Err()
}

func (r *redisHotRepository) HasUnseenFlag(ctx context.Context, kind domain.ConversationKind, conversationID string) (bool, error) {
	n, err := r.client.Exists(ctx, domain.UnseenFlagKey(kind, conversationID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *redisHotRepository) ClearUnseenFlag(ctx context.Context, kind domain.ConversationKind, conversationID string) error {
	return r.client.Del(ctx, domain.UnseenFlagKey(kind, conversationID)).Err()
}
