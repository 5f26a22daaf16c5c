package domain

// ConversationKind selects the channel prefix and the hot buffer limits
type ConversationKind string

const (
	// KindDirect 1 on 1 chat
	KindDirect ConversationKind = "chat"
	// KindGroup group chat
	KindGroup ConversationKind = "group"
	// KindCall signaling relay, never stored
	KindCall ConversationKind = "call"
)

// Pub/sub channel patterns, part of the wire contract with the fanout
const (
	PatternDirect = "chat:*"
	PatternGroup  = "group:*"
	PatternCall   = "call:*"
)

// Channel pub/sub channel of a conversation: {kind}:{conversation_id}
func Channel(kind ConversationKind, conversationID string) string {
	return string(kind) + ":" + conversationID
}

// HotKey redis list holding the conversation's recent messages
func HotKey(kind ConversationKind, conversationID string) string {
	return string(kind) + ":" + conversationID + ":messages"
}

// UnseenFlagKey redis key marking "archived messages may still be unseen"
func UnseenFlagKey(kind ConversationKind, conversationID string) string {
	return string(kind) + ":" + conversationID + ":unseen_in_cold"
}

// HotLimit drain policy of one conversation kind: drain triggers above
// Threshold, the newest KeepTail messages stay hot.
type HotLimit struct {
	Threshold int
	KeepTail  int
}

// Chat direct conversation document, participants managed elsewhere
type Chat struct {
	ID           string   `bson:"_id" json:"chat_id"`
	Participants []string `bson:"participants" json:"participants"`
	CreatedAt    string   `bson:"created_at" json:"created_at"`
}

// Group group conversation document, membership managed elsewhere
type Group struct {
	ID           string   `bson:"_id" json:"group_id"`
	GroupName    string   `bson:"group_name" json:"group_name"`
	Participants []string `bson:"participants" json:"participants"`
	GroupAdmin   string   `bson:"group_admin" json:"group_admin"`
}
