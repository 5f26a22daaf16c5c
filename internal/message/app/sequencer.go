package app

import (
	"context"
	"errors"

	"talk_message_service/internal/message/domain"
	"talk_message_service/internal/message/repository"
	errprocess "talk_message_service/pkg/err"
)

// Sequencer derives monotonic per-conversation ordinals. Callers hold the
// conversation lock so two writers never read the same tail.
type Sequencer struct {
	hot  repository.HotMessageRepository
	cold repository.ColdMessageRepository
}

// NewSequencer create a Sequencer over both tiers
func NewSequencer(hot repository.HotMessageRepository, cold repository.ColdMessageRepository) *Sequencer {
	return &Sequencer{hot: hot, cold: cold}
}

// NextMessageSequence returns the next message ordinal. The hot tail is
// authoritative while the buffer is non-empty; migration always drains in
// order, so the tail sequence can only grow. The cold tier is consulted
// only when the buffer is empty.
func (s *Sequencer) NextMessageSequence(ctx context.Context, kind domain.ConversationKind, conversationID string) (int64, error) {
	last, err := s.hot.Last(ctx, kind, conversationID)
	if err != nil {
		return 0, err
	}
	if last != nil {
		return last.Sequence + 1, nil
	}

	latest, err := s.cold.GetLatestBucket(ctx, conversationID)
	if errors.Is(err, errprocess.ErrNotFound) {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	if len(latest.Messages) == 0 {
		return 0, nil
	}
	return latest.Messages[len(latest.Messages)-1].Sequence + 1, nil
}

// NextBucketSequence returns the next archive page ordinal, 0 when the
// conversation has no buckets yet.
func (s *Sequencer) NextBucketSequence(ctx context.Context, conversationID string) (int64, error) {
	latest, err := s.cold.GetLatestBucket(ctx, conversationID)
	if errors.Is(err, errprocess.ErrNotFound) {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return latest.Sequence + 1, nil
}
