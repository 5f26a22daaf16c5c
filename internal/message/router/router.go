package router

import (
	"context"

	"talk_message_service/internal/message/app"
	"talk_message_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes registers the live and history routes of the message service
func RegisterRoutes(r *fiber.App, ws *app.MessageWebsocketHandler, h *app.MessageHTTPHandler) {
	r.Use(middlewares.JWTMiddleware())

	r.Get("/continue-chat/:chat_id", websocket.New(func(c *websocket.Conn) {
		ws.HandleChat(context.Background(), c)
	}))
	r.Get("/continue-group-chat/:group_id", websocket.New(func(c *websocket.Conn) {
		ws.HandleGroup(context.Background(), c)
	}))
	r.Get("/call/:call_type/:chat_id", websocket.New(func(c *websocket.Conn) {
		ws.HandleCall(context.Background(), c)
	}))

	r.Post("/mark-as-seen/:chat_id/:seen_timestamp", h.MarkAsSeen)
	r.Delete("/unsend-recent-message/:chat_id/:message_id", h.UnsendRecent)
	r.Delete("/unsend-older-message/:chat_id/:message_id/:message_bucket_sequence", h.UnsendOlder)

	r.Get("/fetch-recent-chat/:chat_id", h.FetchRecent)
	r.Get("/fetch-older-chat/:chat_id/:message_bucket_sequence", h.FetchOlder)
	r.Get("/fetch-recent-group-chat/:group_id", h.FetchRecentGroup)
	r.Get("/fetch-older-group-chat/:group_id/:message_bucket_sequence", h.FetchOlderGroup)

	r.Delete("/delete-chat/:chat_id", h.DeleteChat)
}
