package repository

import (
	"context"
	"errors"

	"talk_message_service/internal/message/domain"
	errprocess "talk_message_service/pkg/err"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ConversationRepository definition chat/group lookups and the inbox
// projection. Participant management itself lives in the user service.
type ConversationRepository interface {
	FindChat(ctx context.Context, chatID string) (*domain.Chat, error)
	FindGroup(ctx context.Context, groupID string) (*domain.Group, error)
	// SetLastMessage updates the inbox.chats last_message projection of userID
	SetLastMessage(ctx context.Context, userID, chatID string, last domain.LastMessage) error
	// MarkChatDeleted soft-marks the chat deleted for userID only
	MarkChatDeleted(ctx context.Context, userID, chatID string) error
	// HasMarkedDeleted reports whether userID already soft-deleted the chat
	HasMarkedDeleted(ctx context.Context, userID, chatID string) (bool, error)
	// RemoveChatFromInbox drops the chat entry from userID's inbox
	RemoveChatFromInbox(ctx context.Context, userID, chatID string) error
	// DeleteChat removes the chat document itself
	DeleteChat(ctx context.Context, chatID string) error
}

type mongoConversationRepository struct {
	chats  *mongo.Collection
	groups *mongo.Collection
	users  *mongo.Collection
}

// NewMongoConversationRepository create a ConversationRepository
func NewMongoConversationRepository(db *mongo.Database) ConversationRepository {
	return &mongoConversationRepository{
		chats:  db.Collection("chats"),
		groups: db.Collection("groups"),
		users:  db.Collection("users"),
	}
}

func (r *mongoConversationRepository) FindChat(ctx context.Context, chatID string) (*domain.Chat, error) {
	var chat domain.Chat
	err := r.chats.FindOne(ctx, bson.M{"_id": chatID}).Decode(&chat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errprocess.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *mongoConversationRepository) FindGroup(ctx context.Context, groupID string) (*domain.Group, error) {
	var group domain.Group
	err := r.groups.FindOne(ctx, bson.M{"_id": groupID}).Decode(&group)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errprocess.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *mongoConversationRepository) SetLastMessage(ctx context.Context, userID, chatID string, last domain.LastMessage) error {
	filter := bson.M{"_id": userID, "inbox.chats.chat_id": chatID}
	update := bson.M{
		"$set": bson.M{
			"inbox.chats.$.last_message": last,
		},
	}
	_, err := r.users.UpdateOne(ctx, filter, update)
	return err
}

func (r *mongoConversationRepository) MarkChatDeleted(ctx context.Context, userID, chatID string) error {
	filter := bson.M{"_id": userID, "inbox.chats.chat_id": chatID}
	update := bson.M{
		"$set": bson.M{"inbox.chats.$.deleted": true},
	}
	_, err := r.users.UpdateOne(ctx, filter, update)
	return err
}

func (r *mongoConversationRepository) HasMarkedDeleted(ctx context.Context, userID, chatID string) (bool, error) {
	filter := bson.M{
		"_id": userID,
		"inbox.chats": bson.M{
			"$elemMatch": bson.M{
				"chat_id": chatID,
				"deleted": true,
			},
		},
	}
	err := r.users.FindOne(ctx, filter).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

func (r *mongoConversationRepository) RemoveChatFromInbox(ctx context.Context, userID, chatID string) error {
	filter := bson.M{"_id": userID}
	update := bson.M{
		"$pull": bson.M{"inbox.chats": bson.M{"chat_id": chatID}},
	}
	_, err := r.users.UpdateOne(ctx, filter, update)
	return err
}

func (r *mongoConversationRepository) DeleteChat(ctx context.Context, chatID string) error {
	_, err := r.chats.DeleteOne(ctx, bson.M{"_id": chatID})
	return err
}
