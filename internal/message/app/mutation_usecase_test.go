package app

import (
	"context"
	"testing"

	"talk_message_service/internal/message/domain"
	errprocess "talk_message_service/pkg/err"
	"talk_message_service/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newMutationUseCaseForTest(convRepo *MockConversationRepository, hot *MockHotRepository, cold *MockColdRepository, fanout *MockFanoutPublisher) *MutationUseCase {
	return NewMutationUseCase(convRepo, hot, cold, fanout, NewConversationLocks())
}

func strPtr(s string) *string { return &s }

// The cold tier stays untouched while the dirty-unseen flag is unset
func TestMutationUseCase_MarkAsSeen_FlagUnset(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	chatID := uuid.New().String()
	userID := "user-b"
	ts := "2026-08-31T10:00:00Z"

	mockConvRepo := new(MockConversationRepository)
	mockHot := new(MockHotRepository)
	mockCold := new(MockColdRepository)
	mockFanout := new(MockFanoutPublisher)

	mockConvRepo.On("FindChat", ctx, chatID).Return(&domain.Chat{
		ID:           chatID,
		Participants: []string{"user-a", userID},
	}, nil)
	mockHot.On("HasUnseenFlag", ctx, domain.KindDirect, chatID).Return(false, nil)
	mockHot.On("ReadAll", ctx, domain.KindDirect, chatID).Return([]domain.Message{
		{ID: "m-0", SenderID: "user-a", Seen: false},
		{ID: "m-1", SenderID: userID, Seen: false},
		{ID: "m-2", SenderID: "user-a", Seen: true},
	}, nil)
	// only the other side's unseen message gets rewritten
	mockHot.On("SetAt", ctx, domain.KindDirect, chatID, int64(0), mock.MatchedBy(func(msg domain.Message) bool {
		return msg.ID == "m-0" && msg.Seen && msg.SeenTimestamp != nil && *msg.SeenTimestamp == ts
	})).Return(nil)
	mockFanout.On("Publish", domain.Channel(domain.KindDirect, chatID), mock.MatchedBy(func(event interface{}) bool {
		seen, ok := event.(domain.SeenEvent)
		return ok && seen.Action == domain.ActionSeen && seen.SeenTimestamp == ts
	})).Return(nil)

	uc := newMutationUseCaseForTest(mockConvRepo, mockHot, mockCold, mockFanout)
	err := uc.MarkAsSeen(ctx, domain.KindDirect, chatID, userID, ts)

	assert.NoError(t, err)
	mockCold.AssertNotCalled(t, "MarkSeenBulk", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockHot.AssertNotCalled(t, "ClearUnseenFlag", mock.Anything, mock.Anything, mock.Anything)
	mockHot.AssertExpectations(t)
	mockFanout.AssertExpectations(t)
}

// A set flag triggers the archived sweep; the flag clears only afterwards
func TestMutationUseCase_MarkAsSeen_FlagSet(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	chatID := uuid.New().String()
	userID := "user-b"
	ts := "2026-08-31T10:00:00Z"

	mockConvRepo := new(MockConversationRepository)
	mockHot := new(MockHotRepository)
	mockCold := new(MockColdRepository)
	mockFanout := new(MockFanoutPublisher)

	mockConvRepo.On("FindChat", ctx, chatID).Return(&domain.Chat{
		ID:           chatID,
		Participants: []string{"user-a", userID},
	}, nil)
	mockHot.On("HasUnseenFlag", ctx, domain.KindDirect, chatID).Return(true, nil)
	mockCold.On("MarkSeenBulk", ctx, chatID, userID, ts).Return(nil)
	mockHot.On("ClearUnseenFlag", ctx, domain.KindDirect, chatID).Return(nil)
	mockHot.On("ReadAll", ctx, domain.KindDirect, chatID).Return([]domain.Message{}, nil)
	mockFanout.On("Publish", domain.Channel(domain.KindDirect, chatID), mock.Anything).Return(nil)

	uc := newMutationUseCaseForTest(mockConvRepo, mockHot, mockCold, mockFanout)
	err := uc.MarkAsSeen(ctx, domain.KindDirect, chatID, userID, ts)

	assert.NoError(t, err)
	mockCold.AssertExpectations(t)
	mockHot.AssertExpectations(t)
}

// The flag check, archived sweep and flag clear all run under the
// conversation lock, so a concurrent drain can never set a fresh flag in
// between the sweep and the clear.
func TestMutationUseCase_MarkAsSeen_SweepHoldsConversationLock(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	chatID := uuid.New().String()
	ts := "2026-08-31T10:00:00Z"

	mockConvRepo := new(MockConversationRepository)
	mockHot := new(MockHotRepository)
	mockCold := new(MockColdRepository)
	mockFanout := new(MockFanoutPublisher)
	locks := NewConversationLocks()

	lockHeld := func(args mock.Arguments) {
		lock := locks.Get(domain.KindDirect, chatID)
		assert.False(t, lock.TryLock(), "conversation lock must be held here")
	}

	mockConvRepo.On("FindChat", ctx, chatID).Return(&domain.Chat{
		ID:           chatID,
		Participants: []string{"user-a", "user-b"},
	}, nil)
	mockHot.On("HasUnseenFlag", ctx, domain.KindDirect, chatID).Run(lockHeld).Return(true, nil)
	mockCold.On("MarkSeenBulk", ctx, chatID, "user-b", ts).Run(lockHeld).Return(nil)
	mockHot.On("ClearUnseenFlag", ctx, domain.KindDirect, chatID).Run(lockHeld).Return(nil)
	mockHot.On("ReadAll", ctx, domain.KindDirect, chatID).Return([]domain.Message{}, nil)
	mockFanout.On("Publish", domain.Channel(domain.KindDirect, chatID), mock.Anything).Return(nil)

	uc := NewMutationUseCase(mockConvRepo, mockHot, mockCold, mockFanout, locks)
	err := uc.MarkAsSeen(ctx, domain.KindDirect, chatID, "user-b", ts)

	assert.NoError(t, err)
	// the lock is free again once the call returns
	assert.True(t, locks.Get(domain.KindDirect, chatID).TryLock())
	mockCold.AssertExpectations(t)
	mockHot.AssertExpectations(t)
}

// A failed archived sweep keeps the flag set for the next attempt
func TestMutationUseCase_MarkAsSeen_SweepFailureKeepsFlag(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	chatID := uuid.New().String()

	mockConvRepo := new(MockConversationRepository)
	mockHot := new(MockHotRepository)
	mockCold := new(MockColdRepository)

	mockConvRepo.On("FindChat", ctx, chatID).Return(&domain.Chat{
		ID:           chatID,
		Participants: []string{"user-a", "user-b"},
	}, nil)
	mockHot.On("HasUnseenFlag", ctx, domain.KindDirect, chatID).Return(true, nil)
	mockCold.On("MarkSeenBulk", ctx, chatID, "user-b", "ts").Return(errprocess.Set("mongo down"))

	uc := newMutationUseCaseForTest(mockConvRepo, mockHot, mockCold, new(MockFanoutPublisher))
	err := uc.MarkAsSeen(ctx, domain.KindDirect, chatID, "user-b", "ts")

	assert.Error(t, err)
	mockHot.AssertNotCalled(t, "ClearUnseenFlag", mock.Anything, mock.Anything, mock.Anything)
}

func TestMutationUseCase_UnsendRecent(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	chatID := uuid.New().String()
	senderID := "user-a"
	messageID := "m-1"

	mockConvRepo := new(MockConversationRepository)
	mockHot := new(MockHotRepository)
	mockFanout := new(MockFanoutPublisher)

	mockConvRepo.On("FindChat", ctx, chatID).Return(&domain.Chat{
		ID:           chatID,
		Participants: []string{senderID, "user-b"},
	}, nil)
	mockHot.On("ReadAll", ctx, domain.KindDirect, chatID).Return([]domain.Message{
		{ID: "m-0", SenderID: "user-b", Content: "hi"},
		{ID: messageID, SenderID: senderID, Content: "regret"},
		{ID: "m-2", SenderID: "user-b", Content: "re", ReplyToID: strPtr(messageID), ReplyToContent: strPtr("regret")},
	}, nil)
	mockHot.On("TombstoneAt", ctx, domain.KindDirect, chatID, int64(1)).Return(nil)
	// the reply loses its reference while indices are still stable
	mockHot.On("SetAt", ctx, domain.KindDirect, chatID, int64(2), mock.MatchedBy(func(msg domain.Message) bool {
		return msg.ID == "m-2" && msg.ReplyToID == nil && msg.ReplyToContent == nil
	})).Return(nil)
	mockHot.On("Compact", ctx, domain.KindDirect, chatID).Return(nil)
	tail := &domain.Message{ID: "m-2", SenderID: "user-b", Content: "re", CreatedAt: "2026-08-31T09:00:00Z"}
	mockHot.On("Last", ctx, domain.KindDirect, chatID).Return(tail, nil)
	mockFanout.On("Publish", domain.Channel(domain.KindDirect, chatID), mock.MatchedBy(func(event interface{}) bool {
		del, ok := event.(domain.DeleteEvent)
		return ok && del.Action == domain.ActionDelete && del.MessageID == messageID
	})).Return(nil)
	mockConvRepo.On("SetLastMessage", ctx, senderID, chatID, mock.MatchedBy(func(last domain.LastMessage) bool {
		return last.Content == "re" && last.SentBy == "user-b"
	})).Return(nil)
	mockConvRepo.On("SetLastMessage", ctx, "user-b", chatID, mock.Anything).Return(nil)

	uc := newMutationUseCaseForTest(mockConvRepo, mockHot, new(MockColdRepository), mockFanout)
	err := uc.UnsendRecent(ctx, domain.KindDirect, chatID, messageID, senderID)

	assert.NoError(t, err)
	mockHot.AssertExpectations(t)
	mockConvRepo.AssertExpectations(t)
}

func TestMutationUseCase_UnsendRecent_NotOwner(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	chatID := uuid.New().String()

	mockConvRepo := new(MockConversationRepository)
	mockHot := new(MockHotRepository)

	mockConvRepo.On("FindChat", ctx, chatID).Return(&domain.Chat{
		ID:           chatID,
		Participants: []string{"user-a", "user-b"},
	}, nil)
	mockHot.On("ReadAll", ctx, domain.KindDirect, chatID).Return([]domain.Message{
		{ID: "m-1", SenderID: "user-a"},
	}, nil)

	uc := newMutationUseCaseForTest(mockConvRepo, mockHot, new(MockColdRepository), new(MockFanoutPublisher))
	err := uc.UnsendRecent(ctx, domain.KindDirect, chatID, "m-1", "user-b")

	assert.ErrorIs(t, err, errprocess.ErrPermissionDenied)
	mockHot.AssertNotCalled(t, "TombstoneAt", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// A repeated unsend finds nothing and reports not-found
func TestMutationUseCase_UnsendRecent_AlreadyGone(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	chatID := uuid.New().String()

	mockConvRepo := new(MockConversationRepository)
	mockHot := new(MockHotRepository)

	mockConvRepo.On("FindChat", ctx, chatID).Return(&domain.Chat{
		ID:           chatID,
		Participants: []string{"user-a", "user-b"},
	}, nil)
	mockHot.On("ReadAll", ctx, domain.KindDirect, chatID).Return([]domain.Message{}, nil)

	uc := newMutationUseCaseForTest(mockConvRepo, mockHot, new(MockColdRepository), new(MockFanoutPublisher))
	err := uc.UnsendRecent(ctx, domain.KindDirect, chatID, "m-gone", "user-a")

	assert.ErrorIs(t, err, errprocess.ErrNotFound)
}

func TestMutationUseCase_UnsendOlder(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	chatID := uuid.New().String()
	messageID := "m-archived"

	mockHot := new(MockHotRepository)
	mockCold := new(MockColdRepository)
	mockFanout := new(MockFanoutPublisher)

	mockCold.On("RemoveMessage", ctx, chatID, int64(3), messageID, "user-a").Return(nil)
	mockCold.On("NullifyReplies", ctx, chatID, messageID).Return(nil)
	mockHot.On("ReadAll", ctx, domain.KindDirect, chatID).Return([]domain.Message{
		{ID: "m-10", SenderID: "user-b", ReplyToID: strPtr(messageID), ReplyToContent: strPtr("old")},
	}, nil)
	mockHot.On("SetAt", ctx, domain.KindDirect, chatID, int64(0), mock.MatchedBy(func(msg domain.Message) bool {
		return msg.ReplyToID == nil && msg.ReplyToContent == nil
	})).Return(nil)
	mockFanout.On("Publish", domain.Channel(domain.KindDirect, chatID), mock.Anything).Return(nil)

	uc := newMutationUseCaseForTest(new(MockConversationRepository), mockHot, mockCold, mockFanout)
	err := uc.UnsendOlder(ctx, domain.KindDirect, chatID, messageID, 3, "user-a")

	assert.NoError(t, err)
	mockCold.AssertExpectations(t)
	mockHot.AssertExpectations(t)
}

func TestMutationUseCase_UnsendOlder_PermissionDenied(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	chatID := uuid.New().String()

	mockCold := new(MockColdRepository)
	mockCold.On("RemoveMessage", ctx, chatID, int64(0), "m-x", "intruder").Return(errprocess.ErrPermissionDenied)

	uc := newMutationUseCaseForTest(new(MockConversationRepository), new(MockHotRepository), mockCold, new(MockFanoutPublisher))
	err := uc.UnsendOlder(ctx, domain.KindDirect, chatID, "m-x", 0, "intruder")

	assert.ErrorIs(t, err, errprocess.ErrPermissionDenied)
	mockCold.AssertNotCalled(t, "NullifyReplies", mock.Anything, mock.Anything, mock.Anything)
}

// The first deleter only gets the soft mark
func TestMutationUseCase_DeleteChat_FirstSide(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	chatID := uuid.New().String()

	mockConvRepo := new(MockConversationRepository)
	mockConvRepo.On("FindChat", ctx, chatID).Return(&domain.Chat{
		ID:           chatID,
		Participants: []string{"user-a", "user-b"},
	}, nil)
	mockConvRepo.On("HasMarkedDeleted", ctx, "user-b", chatID).Return(false, nil)
	mockConvRepo.On("MarkChatDeleted", ctx, "user-a", chatID).Return(nil)

	uc := newMutationUseCaseForTest(mockConvRepo, new(MockHotRepository), new(MockColdRepository), new(MockFanoutPublisher))
	purged, err := uc.DeleteChat(ctx, chatID, "user-a")

	assert.NoError(t, err)
	assert.False(t, purged)
	mockConvRepo.AssertExpectations(t)
}

// Once both sides marked the chat deleted, everything is purged
func TestMutationUseCase_DeleteChat_SecondSidePurges(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	chatID := uuid.New().String()

	mockConvRepo := new(MockConversationRepository)
	mockHot := new(MockHotRepository)
	mockCold := new(MockColdRepository)

	mockConvRepo.On("FindChat", ctx, chatID).Return(&domain.Chat{
		ID:           chatID,
		Participants: []string{"user-a", "user-b"},
	}, nil)
	mockConvRepo.On("HasMarkedDeleted", ctx, "user-a", chatID).Return(true, nil)
	mockConvRepo.On("DeleteChat", ctx, chatID).Return(nil)
	mockConvRepo.On("RemoveChatFromInbox", ctx, "user-a", chatID).Return(nil)
	mockConvRepo.On("RemoveChatFromInbox", ctx, "user-b", chatID).Return(nil)
	mockCold.On("Purge", ctx, chatID).Return(nil)
	mockHot.On("Clear", ctx, domain.KindDirect, chatID).Return(nil)
	mockHot.On("ClearUnseenFlag", ctx, domain.KindDirect, chatID).Return(nil)

	uc := newMutationUseCaseForTest(mockConvRepo, mockHot, mockCold, new(MockFanoutPublisher))
	purged, err := uc.DeleteChat(ctx, chatID, "user-b")

	assert.NoError(t, err)
	assert.True(t, purged)
	mockConvRepo.AssertExpectations(t)
	mockCold.AssertExpectations(t)
	mockHot.AssertExpectations(t)
}
