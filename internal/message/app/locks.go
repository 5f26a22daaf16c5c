package app

import (
	"sync"

	"talk_message_service/internal/message/domain"
)

// ConversationLocks serializes mutating hot-buffer operations per
// conversation. Sequence assignment, drain, tombstone/compact and the seen
// sweep are read-modify-write sections on the same list; holding the
// conversation's mutex across them prevents duplicate sequence numbers and
// lost writes during drain. Different conversations never contend.
type ConversationLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewConversationLocks create an empty lock table
func NewConversationLocks() *ConversationLocks {
	return &ConversationLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

// Get returns the mutex of one conversation, creating it on first use.
// Locks are never removed; the table stays small (one entry per
// conversation seen since process start).
func (l *ConversationLocks) Get(kind domain.ConversationKind, conversationID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := string(kind) + ":" + conversationID
	lock, ok := l.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}
	return lock
}
