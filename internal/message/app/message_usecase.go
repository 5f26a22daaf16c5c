package app

import (
	"context"
	"time"

	"talk_message_service/internal/message/domain"
	"talk_message_service/internal/message/repository"
	"talk_message_service/pkg"
	errprocess "talk_message_service/pkg/err"
	"talk_message_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessageUseCase handles the live write path and history reads
type MessageUseCase struct {
	convRepo repository.ConversationRepository
	hot      repository.HotMessageRepository
	cold     repository.ColdMessageRepository
	fanout   repository.FanoutPublisher
	seq      *Sequencer
	locks    *ConversationLocks
}

// NewMessageUseCase init message use case
func NewMessageUseCase(
	convRepo repository.ConversationRepository,
	hot repository.HotMessageRepository,
	cold repository.ColdMessageRepository,
	fanout repository.FanoutPublisher,
	seq *Sequencer,
	locks *ConversationLocks,
) *MessageUseCase {
	return &MessageUseCase{
		convRepo: convRepo,
		hot:      hot,
		cold:     cold,
		fanout:   fanout,
		seq:      seq,
		locks:    locks,
	}
}

// Authorize resolves the conversation and checks userID participates.
// Returns the participant list for projection updates.
func (uc *MessageUseCase) Authorize(ctx context.Context, kind domain.ConversationKind, conversationID, userID string) ([]string, error) {
	var participants []string

	switch kind {
	case domain.KindGroup:
		group, err := uc.convRepo.FindGroup(ctx, conversationID)
		if err != nil {
			return nil, err
		}
		participants = group.Participants
	default:
		chat, err := uc.convRepo.FindChat(ctx, conversationID)
		if err != nil {
			return nil, err
		}
		participants = chat.Participants
	}

	if !pkg.Contains(participants, userID) {
		return nil, errprocess.ErrPermissionDenied
	}
	return participants, nil
}

// Send appends a new message to the hot buffer and fans it out. Storage
// failure is surfaced to the caller; a just-composed message must never be
// dropped silently.
func (uc *MessageUseCase) Send(ctx context.Context, kind domain.ConversationKind, conversationID, senderID string, participants []string, frame domain.InboundFrame) (domain.Message, error) {
	msg := domain.Message{
		ID:             frame.ID,
		SenderID:       senderID,
		Content:        frame.Content,
		ReplyToID:      frame.ReplyToID,
		ReplyToContent: frame.ReplyToContent,
		Seen:           false,
		Action:         frame.Action,
		CreatedAt:      frame.CreatedAt,
	}
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Action == "" {
		msg.Action = domain.ActionCreate
	}
	if msg.CreatedAt == "" {
		msg.CreatedAt = time.Now().Format(time.RFC3339)
	}

	lock := uc.locks.Get(kind, conversationID)
	lock.Lock()
	sequence, err := uc.seq.NextMessageSequence(ctx, kind, conversationID)
	if err != nil {
		lock.Unlock()
		return domain.Message{}, err
	}
	msg.Sequence = sequence

	if err := uc.hot.Append(ctx, kind, conversationID, msg); err != nil {
		lock.Unlock()
		return domain.Message{}, err
	}
	lock.Unlock()

	if err := uc.fanout.Publish(domain.Channel(kind, conversationID), msg); err != nil {
		// Delivery is best effort; the message is stored and recoverable
		// through a history fetch.
		logger.Log.Errorf("publish failed", err, zap.String("conversation_id", conversationID))
	}

	if kind == domain.KindDirect {
		uc.updateLastMessage(ctx, conversationID, participants, domain.LastMessage{
			Content:   msg.Content,
			SentBy:    msg.SenderID,
			CreatedAt: &msg.CreatedAt,
		})
	}

	return msg, nil
}

// FetchRecent returns the whole hot buffer, oldest first
func (uc *MessageUseCase) FetchRecent(ctx context.Context, kind domain.ConversationKind, conversationID, userID string) ([]domain.Message, error) {
	if _, err := uc.Authorize(ctx, kind, conversationID, userID); err != nil {
		return nil, err
	}

	msgs, err := uc.hot.ReadAll(ctx, kind, conversationID)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, errprocess.ErrNotFound
	}
	return msgs, nil
}

// FetchOlder returns one archive page together with the newest page
// sequence so clients can keep paging.
func (uc *MessageUseCase) FetchOlder(ctx context.Context, kind domain.ConversationKind, conversationID, userID string, bucketSequence int64) (*domain.MessageBucket, int64, error) {
	if _, err := uc.Authorize(ctx, kind, conversationID, userID); err != nil {
		return nil, 0, err
	}

	latest, err := uc.cold.GetLatestBucket(ctx, conversationID)
	if err != nil {
		return nil, 0, err
	}
	if latest.Sequence == bucketSequence {
		return latest, latest.Sequence, nil
	}

	bucket, err := uc.cold.GetBucket(ctx, conversationID, bucketSequence)
	if err != nil {
		return nil, 0, err
	}
	return bucket, latest.Sequence, nil
}

func (uc *MessageUseCase) updateLastMessage(ctx context.Context, chatID string, participants []string, last domain.LastMessage) {
	for _, participantID := range participants {
		if err := uc.convRepo.SetLastMessage(ctx, participantID, chatID, last); err != nil {
			logger.Log.Errorf("last message projection failed", err,
				zap.String("chat_id", chatID),
				zap.String("user_id", participantID),
			)
		}
	}
}
