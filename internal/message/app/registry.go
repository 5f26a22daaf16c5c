package app

import (
	"sync"

	"talk_message_service/internal/message/domain"
	"talk_message_service/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

type liveConnection struct {
	id   string
	conn domain.LiveConn
}

// ConnectionRegistry tracks live subscriber connections per conversation.
// It owns its state completely: connect/disconnect come from connection
// goroutines, broadcast from the fanout listener, and broadcast is the only
// place dead connections get cleaned up.
type ConnectionRegistry struct {
	mu     sync.Mutex
	active map[string][]liveConnection
}

// NewConnectionRegistry create an empty registry
func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		active: make(map[string][]liveConnection),
	}
}

// Connect registers a connection under the conversation id
func (r *ConnectionRegistry) Connect(conversationID, connectionID string, conn domain.LiveConn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[conversationID] = append(r.active[conversationID], liveConnection{
		id:   connectionID,
		conn: conn,
	})
}

// Disconnect removes a connection; removing an unknown id is a no-op
func (r *ConnectionRegistry) Disconnect(conversationID, connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(conversationID, connectionID)
}

// Broadcast sends payload to every connection of the conversation. It
// iterates a snapshot so concurrent disconnects never corrupt the loop, and
// drops any connection whose send fails. Failures never reach the publisher
// or the other connections.
func (r *ConnectionRegistry) Broadcast(conversationID string, payload []byte) {
	r.mu.Lock()
	snapshot := make([]liveConnection, len(r.active[conversationID]))
	copy(snapshot, r.active[conversationID])
	r.mu.Unlock()

	for _, connection := range snapshot {
		if err := connection.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logger.Log.Warn("dropping dead connection",
				zap.String("conversation_id", conversationID),
				zap.String("connection_id", connection.id),
				zap.Error(err),
			)
			r.mu.Lock()
			r.removeLocked(conversationID, connection.id)
			r.mu.Unlock()
			connection.conn.Close()
		}
	}
}

// Count reports the live connections of a conversation
func (r *ConnectionRegistry) Count(conversationID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active[conversationID])
}

func (r *ConnectionRegistry) removeLocked(conversationID, connectionID string) {
	connections := r.active[conversationID]
	remaining := connections[:0]
	for _, connection := range connections {
		if connection.id != connectionID {
			remaining = append(remaining, connection)
		}
	}
	if len(remaining) == 0 {
		delete(r.active, conversationID)
		return
	}
	r.active[conversationID] = remaining
}
