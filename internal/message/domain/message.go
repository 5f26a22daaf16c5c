package domain

import "time"

// Action values carried by messages and broadcast events
const (
	ActionCreate = "create"
	ActionSeen   = "seen"
	ActionDelete = "delete"
)

// Tombstone placeholder written over an unsent hot message before compaction
const Tombstone = "__deleted__"

// Message one chat message. It lives in the hot buffer until the archiver
// moves it into a cold bucket; message_sequence is unique per conversation
// across both tiers and is never reused.
type Message struct {
	ID             string  `bson:"id" json:"id"`
	SenderID       string  `bson:"sender_id" json:"sender_id"`
	Content        string  `bson:"content" json:"content"`
	ReplyToID      *string `bson:"reply_to_id,omitempty" json:"reply_to_id"`
	ReplyToContent *string `bson:"reply_to_content,omitempty" json:"reply_to_content"`
	Sequence       int64   `bson:"message_sequence" json:"message_sequence"`
	Seen           bool    `bson:"seen" json:"seen"`
	SeenTimestamp  *string `bson:"seen_timestamp,omitempty" json:"seen_timestamp"`
	Action         string  `bson:"action" json:"action"`
	CreatedAt      string  `bson:"created_at" json:"created_at"`
}

// MessageBucket archive page of a conversation. Produced exactly once by the
// archiver; message_bucket_sequence starts at 0 and grows per conversation.
type MessageBucket struct {
	ConversationID string           `bson:"conversation_id" json:"conversation_id"`
	Kind           ConversationKind `bson:"kind" json:"kind"`
	Sequence       int64            `bson:"message_bucket_sequence" json:"message_bucket_sequence"`
	Messages       []Message        `bson:"messages" json:"messages"`
	CreatedAt      time.Time        `bson:"created_at" json:"created_at"`
}

// SeenEvent broadcast after messages were marked seen
type SeenEvent struct {
	Action        string `json:"action"`
	SeenTimestamp string `json:"seen_timestamp"`
}

// DeleteEvent broadcast after a message was unsent
type DeleteEvent struct {
	Action    string `json:"action"`
	MessageID string `json:"message_id"`
}

// LastMessage inbox projection of a conversation's newest message
type LastMessage struct {
	Content   string  `bson:"content" json:"content"`
	SentBy    string  `bson:"sent_by" json:"sent_by"`
	CreatedAt *string `bson:"created_at" json:"created_at"`
}
