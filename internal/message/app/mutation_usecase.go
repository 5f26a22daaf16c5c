package app

import (
	"context"

	"talk_message_service/internal/message/domain"
	"talk_message_service/internal/message/repository"
	"talk_message_service/pkg"
	errprocess "talk_message_service/pkg/err"
	"talk_message_service/pkg/logger"

	"go.uber.org/zap"
)

// MutationUseCase keeps seen and delete state consistent across both tiers
// without scanning archived history unless the dirty-unseen flag demands it.
type MutationUseCase struct {
	convRepo repository.ConversationRepository
	hot      repository.HotMessageRepository
	cold     repository.ColdMessageRepository
	fanout   repository.FanoutPublisher
	locks    *ConversationLocks
}

// NewMutationUseCase init mutation use case
func NewMutationUseCase(
	convRepo repository.ConversationRepository,
	hot repository.HotMessageRepository,
	cold repository.ColdMessageRepository,
	fanout repository.FanoutPublisher,
	locks *ConversationLocks,
) *MutationUseCase {
	return &MutationUseCase{
		convRepo: convRepo,
		hot:      hot,
		cold:     cold,
		fanout:   fanout,
		locks:    locks,
	}
}

// MarkAsSeen marks every message not sent by userID as seen. The cold tier
// is touched only while the dirty-unseen flag is set; the flag is cleared
// only after the bulk update succeeded, so a crash mid-update keeps the
// "needs sweep" signal. The whole flag check / bulk sweep / clear sequence
// runs under the conversation lock: the archiver sets the flag under the
// same lock while draining, so a drain can never slip a fresh flag in
// between the sweep and the clear.
func (uc *MutationUseCase) MarkAsSeen(ctx context.Context, kind domain.ConversationKind, conversationID, userID, seenTimestamp string) error {
	if err := uc.authorize(ctx, kind, conversationID, userID); err != nil {
		return err
	}

	lock := uc.locks.Get(kind, conversationID)
	lock.Lock()

	flagged, err := uc.hot.HasUnseenFlag(ctx, kind, conversationID)
	if err != nil {
		lock.Unlock()
		return err
	}
	if flagged {
		if err := uc.cold.MarkSeenBulk(ctx, conversationID, userID, seenTimestamp); err != nil {
			lock.Unlock()
			return err
		}
		if err := uc.hot.ClearUnseenFlag(ctx, kind, conversationID); err != nil {
			lock.Unlock()
			return err
		}
	}

	msgs, err := uc.hot.ReadAll(ctx, kind, conversationID)
	if err != nil {
		lock.Unlock()
		return err
	}
	for i, msg := range msgs {
		if msg.SenderID != userID && !msg.Seen {
			msg.Seen = true
			ts := seenTimestamp
			msg.SeenTimestamp = &ts
			if err := uc.hot.SetAt(ctx, kind, conversationID, int64(i), msg); err != nil {
				lock.Unlock()
				return err
			}
		}
	}
	lock.Unlock()

	event := domain.SeenEvent{Action: domain.ActionSeen, SeenTimestamp: seenTimestamp}
	if err := uc.fanout.Publish(domain.Channel(kind, conversationID), event); err != nil {
		logger.Log.Errorf("publish seen event failed", err, zap.String("conversation_id", conversationID))
	}
	return nil
}

// UnsendRecent removes a still-hot message. The target is tombstoned in
// place first so reply nullification can address the other positions by
// index, then the tombstones are compacted away. Idempotent: a repeated
// call reports not-found.
func (uc *MutationUseCase) UnsendRecent(ctx context.Context, kind domain.ConversationKind, conversationID, messageID, requesterID string) error {
	participants, err := uc.participants(ctx, kind, conversationID, requesterID)
	if err != nil {
		return err
	}

	lock := uc.locks.Get(kind, conversationID)
	lock.Lock()

	msgs, err := uc.hot.ReadAll(ctx, kind, conversationID)
	if err != nil {
		lock.Unlock()
		return err
	}

	targetIndex := int64(-1)
	for i, msg := range msgs {
		if msg.ID == messageID {
			if msg.SenderID != requesterID {
				lock.Unlock()
				return errprocess.ErrPermissionDenied
			}
			targetIndex = int64(i)
			break
		}
	}
	if targetIndex < 0 {
		lock.Unlock()
		return errprocess.ErrNotFound
	}

	if err := uc.hot.TombstoneAt(ctx, kind, conversationID, targetIndex); err != nil {
		lock.Unlock()
		return err
	}
	for i, msg := range msgs {
		if int64(i) == targetIndex {
			continue
		}
		if msg.ReplyToID != nil && *msg.ReplyToID == messageID {
			msg.ReplyToID = nil
			msg.ReplyToContent = nil
			if err := uc.hot.SetAt(ctx, kind, conversationID, int64(i), msg); err != nil {
				lock.Unlock()
				return err
			}
		}
	}
	if err := uc.hot.Compact(ctx, kind, conversationID); err != nil {
		lock.Unlock()
		return err
	}

	tail, err := uc.hot.Last(ctx, kind, conversationID)
	lock.Unlock()
	if err != nil {
		return err
	}

	event := domain.DeleteEvent{Action: domain.ActionDelete, MessageID: messageID}
	if err := uc.fanout.Publish(domain.Channel(kind, conversationID), event); err != nil {
		logger.Log.Errorf("publish delete event failed", err, zap.String("conversation_id", conversationID))
	}

	if kind == domain.KindDirect {
		last := domain.LastMessage{}
		if tail != nil {
			last = domain.LastMessage{
				Content:   tail.Content,
				SentBy:    tail.SenderID,
				CreatedAt: &tail.CreatedAt,
			}
		}
		for _, participantID := range participants {
			if err := uc.convRepo.SetLastMessage(ctx, participantID, conversationID, last); err != nil {
				logger.Log.Errorf("last message projection failed", err,
					zap.String("chat_id", conversationID),
					zap.String("user_id", participantID),
				)
			}
		}
	}

	return nil
}

// UnsendOlder removes an already-archived message from its bucket, then
// sweeps reply references out of both tiers. Dangling references are a
// correctness defect, so this is the one operation allowed to touch history
// broadly. Idempotent: a repeated call reports not-found.
func (uc *MutationUseCase) UnsendOlder(ctx context.Context, kind domain.ConversationKind, conversationID, messageID string, bucketSequence int64, requesterID string) error {
	if err := uc.cold.RemoveMessage(ctx, conversationID, bucketSequence, messageID, requesterID); err != nil {
		return err
	}

	if err := uc.cold.NullifyReplies(ctx, conversationID, messageID); err != nil {
		return err
	}

	lock := uc.locks.Get(kind, conversationID)
	lock.Lock()
	msgs, err := uc.hot.ReadAll(ctx, kind, conversationID)
	if err != nil {
		lock.Unlock()
		return err
	}
	for i, msg := range msgs {
		if msg.ReplyToID != nil && *msg.ReplyToID == messageID {
			msg.ReplyToID = nil
			msg.ReplyToContent = nil
			if err := uc.hot.SetAt(ctx, kind, conversationID, int64(i), msg); err != nil {
				lock.Unlock()
				return err
			}
		}
	}
	lock.Unlock()

	event := domain.DeleteEvent{Action: domain.ActionDelete, MessageID: messageID}
	if err := uc.fanout.Publish(domain.Channel(kind, conversationID), event); err != nil {
		logger.Log.Errorf("publish delete event failed", err, zap.String("conversation_id", conversationID))
	}
	return nil
}

// DeleteChat applies the two-sided delete: the first deleter only gets a
// soft per-user mark; once the other side marked it too, the chat document,
// every cold bucket and the hot buffer are purged. Returns whether the
// conversation was purged.
func (uc *MutationUseCase) DeleteChat(ctx context.Context, chatID, userID string) (bool, error) {
	chat, err := uc.convRepo.FindChat(ctx, chatID)
	if err != nil {
		return false, err
	}
	if !pkg.Contains(chat.Participants, userID) {
		return false, errprocess.ErrPermissionDenied
	}

	participantID := ""
	for _, p := range chat.Participants {
		if p != userID {
			participantID = p
			break
		}
	}

	otherMarked := false
	if participantID != "" {
		otherMarked, err = uc.convRepo.HasMarkedDeleted(ctx, participantID, chatID)
		if err != nil {
			return false, err
		}
	}

	if !otherMarked {
		if err := uc.convRepo.MarkChatDeleted(ctx, userID, chatID); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := uc.convRepo.DeleteChat(ctx, chatID); err != nil {
		return false, err
	}
	for _, p := range chat.Participants {
		if err := uc.convRepo.RemoveChatFromInbox(ctx, p, chatID); err != nil {
			logger.Log.Errorf("inbox cleanup failed", err, zap.String("user_id", p))
		}
	}
	if err := uc.cold.Purge(ctx, chatID); err != nil {
		return false, err
	}
	if err := uc.hot.Clear(ctx, domain.KindDirect, chatID); err != nil {
		return false, err
	}
	if err := uc.hot.ClearUnseenFlag(ctx, domain.KindDirect, chatID); err != nil {
		return false, err
	}
	return true, nil
}

func (uc *MutationUseCase) authorize(ctx context.Context, kind domain.ConversationKind, conversationID, userID string) error {
	_, err := uc.participants(ctx, kind, conversationID, userID)
	return err
}

func (uc *MutationUseCase) participants(ctx context.Context, kind domain.ConversationKind, conversationID, userID string) ([]string, error) {
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
