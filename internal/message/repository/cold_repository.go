package repository

import (
	"context"
	"errors"
	"fmt"

	"talk_message_service/internal/message/domain"
	errprocess "talk_message_service/pkg/err"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ColdMessageRepository definition archived message buckets. Buckets are
// immutable except for the targeted seen/delete corrections below.
type ColdMessageRepository interface {
	// AppendBucket inserts a new bucket document
	AppendBucket(ctx context.Context, bucket *domain.MessageBucket) error
	// GetBucket fetches one bucket by its sequence
	GetBucket(ctx context.Context, conversationID string, bucketSequence int64) (*domain.MessageBucket, error)
	// GetLatestBucket fetches the bucket with the highest sequence
	GetLatestBucket(ctx context.Context, conversationID string) (*domain.MessageBucket, error)
	// MarkSeenBulk sets seen on every archived message not sent by seenBy.
	// Only called while the dirty-unseen flag is set.
	MarkSeenBulk(ctx context.Context, conversationID, seenBy, seenTimestamp string) error
	// RemoveMessage pulls one message out of a bucket after an ownership check
	RemoveMessage(ctx context.Context, conversationID string, bucketSequence int64, messageID, requesterID string) error
	// NullifyReplies clears reply references to messageID in every bucket
	NullifyReplies(ctx context.Context, conversationID, messageID string) error
	// Purge drops all buckets of the conversation
	Purge(ctx context.Context, conversationID string) error
}

type mongoColdRepository struct {
	coll *mongo.Collection
}

// NewMongoColdRepository create a ColdMessageRepository on the messages collection
func NewMongoColdRepository(db *mongo.Database) ColdMessageRepository {
	return &mongoColdRepository{
		coll: db.Collection("messages"),
	}
}

func (r *mongoColdRepository) AppendBucket(ctx context.Context, bucket *domain.MessageBucket) error {
	_, err := r.coll.InsertOne(ctx, bucket)
	return err
}

func (r *mongoColdRepository) GetBucket(ctx context.Context, conversationID string, bucketSequence int64) (*domain.MessageBucket, error) {
	filter := bson.M{
		"conversation_id":         conversationID,
		"message_bucket_sequence": bucketSequence,
	}
	var bucket domain.MessageBucket
	err := r.coll.FindOne(ctx, filter).Decode(&bucket)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errprocess.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return &bucket, nil
}

func (r *mongoColdRepository) GetLatestBucket(ctx context.Context, conversationID string) (*domain.MessageBucket, error) {
	opts := options.FindOne().SetSort(bson.M{"message_bucket_sequence": -1})
	var bucket domain.MessageBucket
	err := r.coll.FindOne(ctx, bson.M{"conversation_id": conversationID}, opts).Decode(&bucket)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errprocess.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return &bucket, nil
}

func (r *mongoColdRepository) MarkSeenBulk(ctx context.Context, conversationID, seenBy, seenTimestamp string) error {
	filter := bson.M{
		"conversation_id": conversationID,
		"messages": bson.M{
			"$elemMatch": bson.M{
				"sender_id": bson.M{"$ne": seenBy},
				"seen":      false,
			},
		},
	}
	update := bson.M{
		"$set": bson.M{
			"messages.$[msg].seen":           true,
			"messages.$[msg].seen_timestamp": seenTimestamp,
		},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"msg.sender_id": bson.M{"$ne": seenBy}, "msg.seen": false},
		},
	})

	_, err := r.coll.UpdateMany(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to mark archived messages seen: %w", err)
	}
	return nil
}

func (r *mongoColdRepository) RemoveMessage(ctx context.Context, conversationID string, bucketSequence int64, messageID, requesterID string) error {
	// Read the bucket first so a foreign sender yields permission-denied
	// instead of a silent not-found.
	bucket, err := r.GetBucket(ctx, conversationID, bucketSequence)
	if err != nil {
		return err
	}

	found := false
	for _, msg := range bucket.Messages {
		if msg.ID == messageID {
			if msg.SenderID != requesterID {
				return errprocess.ErrPermissionDenied
			}
			found = true
			break
		}
	}
	if !found {
		return errprocess.ErrNotFound
	}

	filter := bson.M{
		"conversation_id":         conversationID,
		"message_bucket_sequence": bucketSequence,
		"messages.id":             messageID,
		"messages.sender_id":      requesterID,
	}
	update := bson.M{
		"$pull": bson.M{
			"messages": bson.M{"id": messageID},
		},
	}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.ModifiedCount == 0 {
		return errprocess.ErrNotFound
	}
	return nil
}

func (r *mongoColdRepository) NullifyReplies(ctx context.Context, conversationID, messageID string) error {
	filter := bson.M{
		"conversation_id":     conversationID,
		"messages.reply_to_id": messageID,
	}
	update := bson.M{
		"$set": bson.M{
			"messages.$[elem].reply_to_id":      nil,
			"messages.$[elem].reply_to_content": nil,
		},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"elem.reply_to_id": messageID},
		},
	})

	_, err := r.coll.UpdateMany(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to nullify archived replies: %w", err)
	}
	return nil
}

func (r *mongoColdRepository) Purge(ctx context.Context, conversationID string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"conversation_id": conversationID})
	return err
}
