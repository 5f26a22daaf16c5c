package app

import (
	"context"

	"talk_message_service/internal/message/domain"

	"github.com/stretchr/testify/mock"
)

// MockHotRepository Mock HotMessageRepository
type MockHotRepository struct {
	mock.Mock
}

// Append moke push message onto the buffer tail
func (m *MockHotRepository) Append(ctx context.Context, kind domain.ConversationKind, conversationID string, msg domain.Message) error {
	args := m.Called(ctx, kind, conversationID, msg)
	return args.Error(0)
}

// ReadAll moke read the whole buffer
func (m *MockHotRepository) ReadAll(ctx context.Context, kind domain.ConversationKind, conversationID string) ([]domain.Message, error) {
	args := m.Called(ctx, kind, conversationID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// Last moke read the buffer tail
func (m *MockHotRepository) Last(ctx context.Context, kind domain.ConversationKind, conversationID string) (*domain.Message, error) {
	args := m.Called(ctx, kind, conversationID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// Len moke buffer length
func (m *MockHotRepository) Len(ctx context.Context, kind domain.ConversationKind, conversationID string) (int64, error) {
	args := m.Called(ctx, kind, conversationID)
	return args.Get(0).(int64), args.Error(1)
}

// SetAt moke overwrite at index
func (m *MockHotRepository) SetAt(ctx context.Context, kind domain.ConversationKind, conversationID string, index int64, msg domain.Message) error {
	args := m.Called(ctx, kind, conversationID, index, msg)
	return args.Error(0)
}

// TombstoneAt moke write deletion placeholder
func (m *MockHotRepository) TombstoneAt(ctx context.Context, kind domain.ConversationKind, conversationID string, index int64) error {
	args := m.Called(ctx, kind, conversationID, index)
	return args.Error(0)
}

// Compact moke strip tombstones
func (m *MockHotRepository) Compact(ctx context.Context, kind domain.ConversationKind, conversationID string) error {
	args := m.Called(ctx, kind, conversationID)
	return args.Error(0)
}

// ReplaceAll moke swap buffer content
func (m *MockHotRepository) ReplaceAll(ctx context.Context, kind domain.ConversationKind, conversationID string, msgs []domain.Message) error {
	args := m.Called(ctx, kind, conversationID, msgs)
	return args.Error(0)
}

// Clear moke drop the buffer
func (m *MockHotRepository) Clear(ctx context.Context, kind domain.ConversationKind, conversationID string) error {
	args := m.Called(ctx, kind, conversationID)
	return args.Error(0)
}

// ScanConversations moke list buffered conversation ids
func (m *MockHotRepository) ScanConversations(ctx context.Context, kind domain.ConversationKind) ([]string, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) != nil {
		return args.Get(0).([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// SetUnseenFlag moke set dirty-unseen flag
func (m *MockHotRepository) SetUnseenFlag(ctx context.Context, kind domain.ConversationKind, conversationID string) error {
	args := m.Called(ctx, kind, conversationID)
	return args.Error(0)
}

// HasUnseenFlag moke check dirty-unseen flag
func (m *MockHotRepository) HasUnseenFlag(ctx context.Context, kind domain.ConversationKind, conversationID string) (bool, error) {
	args := m.Called(ctx, kind, conversationID)
	return args.Bool(0), args.Error(1)
}

// ClearUnseenFlag moke drop dirty-unseen flag
func (m *MockHotRepository) ClearUnseenFlag(ctx context.Context, kind domain.ConversationKind, conversationID string) error {
	args := m.Called(ctx, kind, conversationID)
	return args.Error(0)
}

// MockColdRepository Mock ColdMessageRepository
type MockColdRepository struct {
	mock.Mock
}

// AppendBucket moke insert bucket
func (m *MockColdRepository) AppendBucket(ctx context.Context, bucket *domain.MessageBucket) error {
	args := m.Called(ctx, bucket)
	return args.Error(0)
}

// GetBucket moke fetch bucket by sequence
func (m *MockColdRepository) GetBucket(ctx context.Context, conversationID string, bucketSequence int64) (*domain.MessageBucket, error) {
	args := m.Called(ctx, conversationID, bucketSequence)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.MessageBucket), args.Error(1)
	}
	return nil, args.Error(1)
}

// GetLatestBucket moke fetch newest bucket
func (m *MockColdRepository) GetLatestBucket(ctx context.Context, conversationID string) (*domain.MessageBucket, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.MessageBucket), args.Error(1)
	}
	return nil, args.Error(1)
}

// MarkSeenBulk moke archived seen sweep
func (m *MockColdRepository) MarkSeenBulk(ctx context.Context, conversationID, seenBy, seenTimestamp string) error {
	args := m.Called(ctx, conversationID, seenBy, seenTimestamp)
	return args.Error(0)
}

// RemoveMessage moke pull message out of a bucket
func (m *MockColdRepository) RemoveMessage(ctx context.Context, conversationID string, bucketSequence int64, messageID, requesterID string) error {
	args := m.Called(ctx, conversationID, bucketSequence, messageID, requesterID)
	return args.Error(0)
}

// NullifyReplies moke clear archived reply references
func (m *MockColdRepository) NullifyReplies(ctx context.Context, conversationID, messageID string) error {
	args := m.Called(ctx, conversationID, messageID)
	return args.Error(0)
}

// Purge moke drop all buckets
func (m *MockColdRepository) Purge(ctx context.Context, conversationID string) error {
	args := m.Called(ctx, conversationID)
	return args.Error(0)
}

// MockConversationRepository Mock ConversationRepository
type MockConversationRepository struct {
	mock.Mock
}

// FindChat moke find chat by id
func (m *MockConversationRepository) FindChat(ctx context.Context, chatID string) (*domain.Chat, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Chat), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindGroup moke find group by id
func (m *MockConversationRepository) FindGroup(ctx context.Context, groupID string) (*domain.Group, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Group), args.Error(1)
	}
	return nil, args.Error(1)
}

// SetLastMessage moke update inbox projection
func (m *MockConversationRepository) SetLastMessage(ctx context.Context, userID, chatID string, last domain.LastMessage) error {
	args := m.Called(ctx, userID, chatID, last)
	return args.Error(0)
}

// MarkChatDeleted moke soft delete mark
func (m *MockConversationRepository) MarkChatDeleted(ctx context.Context, userID, chatID string) error {
	args := m.Called(ctx, userID, chatID)
	return args.Error(0)
}

// HasMarkedDeleted moke check soft delete mark
func (m *MockConversationRepository) HasMarkedDeleted(ctx context.Context, userID, chatID string) (bool, error) {
	args := m.Called(ctx, userID, chatID)
	return args.Bool(0), args.Error(1)
}

// RemoveChatFromInbox moke drop inbox entry
func (m *MockConversationRepository) RemoveChatFromInbox(ctx context.Context, userID, chatID string) error {
	args := m.Called(ctx, userID, chatID)
	return args.Error(0)
}

// DeleteChat moke remove chat document
func (m *MockConversationRepository) DeleteChat(ctx context.Context, chatID string) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

// MockFanoutPublisher Mock FanoutPublisher
type MockFanoutPublisher struct {
	mock.Mock
}

// Publish moke publisher
func (m *MockFanoutPublisher) Publish(channel string, message interface{}) error {
	args := m.Called(channel, message)
	return args.Error(0)
}
