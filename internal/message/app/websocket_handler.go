package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"talk_message_service/internal/message/domain"
	"talk_message_service/internal/message/repository"
	"talk_message_service/pkg/logger"
	"talk_message_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessageWebsocketHandler is the WebSocket entry point for the live paths:
// direct chat, group chat and call signaling.
type MessageWebsocketHandler struct {
	messageUC *MessageUseCase
	registry  *ConnectionRegistry
	fanout    repository.FanoutPublisher
}

// NewMessageWebsocketHandler create MessageWebsocketHandler
func NewMessageWebsocketHandler(
	messageUC *MessageUseCase,
	registry *ConnectionRegistry,
	fanout repository.FanoutPublisher,
) *MessageWebsocketHandler {
	return &MessageWebsocketHandler{
		messageUC: messageUC,
		registry:  registry,
		fanout:    fanout,
	}
}

// lockedConn serializes writers on one websocket connection. Registry
// broadcasts, the keepalive ping and read-loop error frames come from
// different goroutines, and the underlying conn does not allow concurrent
// writes.
type lockedConn struct {
	mu   sync.Mutex
	conn domain.LiveConn
}

func newLockedConn(conn domain.LiveConn) *lockedConn {
	return &lockedConn{conn: conn}
}

func (c *lockedConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

func (c *lockedConn) Close() error {
	return c.conn.Close()
}

// HandleChat runs the read loop of one direct chat connection
func (h *MessageWebsocketHandler) HandleChat(ctx context.Context, conn *websocket.Conn) {
	h.handleConversation(ctx, conn, domain.KindDirect, conn.Params("chat_id"))
}

// HandleGroup runs the read loop of one group chat connection
func (h *MessageWebsocketHandler) HandleGroup(ctx context.Context, conn *websocket.Conn) {
	h.handleConversation(ctx, conn, domain.KindGroup, conn.Params("group_id"))
}

func (h *MessageWebsocketHandler) handleConversation(ctx context.Context, conn *websocket.Conn, kind domain.ConversationKind, conversationID string) {
	userID, ok := conn.Locals(middlewares.TokenUserID).(string)
	if !ok || userID == "" {
		conn.Close()
		return
	}

	participants, err := h.messageUC.Authorize(ctx, kind, conversationID, userID)
	if err != nil {
		logger.Log.Warn("websocket rejected",
			zap.String("conversation_id", conversationID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		conn.Close()
		return
	}

	connectionID := uuid.New().String()
	live := newLockedConn(conn)
	h.registry.Connect(conversationID, connectionID, live)

	ticker := time.NewTicker(10 * time.Minute)
	ctxClose, cancel := context.WithCancel(context.Background())

	defer func() {
		ticker.Stop()
		cancel()
		h.registry.Disconnect(conversationID, connectionID)
		logger.Log.Info("websocket close",
			zap.String("conversation_id", conversationID),
			zap.String("user_id", userID),
		)
		conn.Close()
	}()

	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})
	conn.SetPongHandler(func(appData string) error {
		return nil
	})

	// keepalive ping; a broken pipe surfaces in the read loop
	go func() {
		for {
			select {
			case <-ticker.C:
				if err := live.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
					logger.Log.Errorf("Ping error:", err)
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Infof("Connection closed:", err)
			} else {
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}

		var frame domain.InboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.sendError(live, "invalid message payload")
			continue
		}

		if _, err := h.messageUC.Send(ctx, kind, conversationID, userID, participants, frame); err != nil {
			// the message was not stored; the sender must know
			h.sendError(live, err.Error())
		}
	}
}

// HandleCall relays signaling frames over the call channel. Frames are
// never stored; delivery is live-only.
func (h *MessageWebsocketHandler) HandleCall(ctx context.Context, conn *websocket.Conn) {
	userID, ok := conn.Locals(middlewares.TokenUserID).(string)
	if !ok || userID == "" {
		conn.Close()
		return
	}
	chatID := conn.Params("chat_id")

	if _, err := h.messageUC.Authorize(ctx, domain.KindDirect, chatID, userID); err != nil {
		logger.Log.Warn("call websocket rejected",
			zap.String("chat_id", chatID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		conn.Close()
		return
	}

	connectionID := uuid.New().String()
	live := newLockedConn(conn)
	h.registry.Connect(chatID, connectionID, live)

	defer func() {
		h.registry.Disconnect(chatID, connectionID)
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			logger.Log.Infof("call websocket closed:", err)
			return
		}

		var signal map[string]interface{}
		if err := json.Unmarshal(raw, &signal); err != nil {
			h.sendError(live, "invalid signaling payload")
			continue
		}
		if err := h.fanout.Publish(domain.Channel(domain.KindCall, chatID), signal); err != nil {
			logger.Log.Errorf("signaling publish failed", err, zap.String("chat_id", chatID))
		}
	}
}

func (h *MessageWebsocketHandler) sendError(conn domain.LiveConn, errorMsg string) {
	frame := domain.ErrorFrame{Action: "error", Error: errorMsg}
	b, _ := json.Marshal(frame)
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		logger.Log.Errorf("write message error:", err)
	}
}
