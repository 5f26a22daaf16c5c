package app

import (
	"errors"
	"net/http"
	"strconv"

	"talk_message_service/internal/message/domain"
	errprocess "talk_message_service/pkg/err"
	"talk_message_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// MessageHTTPHandler definition history and mutation REST handlers
type MessageHTTPHandler struct {
	messageUC  *MessageUseCase
	mutationUC *MutationUseCase
}

// NewMessageHTTPHandler create MessageHTTPHandler
func NewMessageHTTPHandler(messageUC *MessageUseCase, mutationUC *MutationUseCase) *MessageHTTPHandler {
	return &MessageHTTPHandler{
		messageUC:  messageUC,
		mutationUC: mutationUC,
	}
}

// MarkAsSeen marks every message of the chat not sent by the caller as seen
func (h *MessageHTTPHandler) MarkAsSeen(c *fiber.Ctx) error {
	userID := c.Locals(middlewares.TokenUserID).(string)
	chatID := c.Params("chat_id")
	seenTimestamp := c.Params("seen_timestamp")

	if err := h.mutationUC.MarkAsSeen(c.Context(), domain.KindDirect, chatID, userID, seenTimestamp); err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": "Messages marked as seen"})
}

// UnsendRecent removes a message still in the hot buffer
func (h *MessageHTTPHandler) UnsendRecent(c *fiber.Ctx) error {
	userID := c.Locals(middlewares.TokenUserID).(string)
	chatID := c.Params("chat_id")
	messageID := c.Params("message_id")

	if err := h.mutationUC.UnsendRecent(c.Context(), domain.KindDirect, chatID, messageID, userID); err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": "Message unsent successfully"})
}

// UnsendOlder removes a message from an archived bucket
func (h *MessageHTTPHandler) UnsendOlder(c *fiber.Ctx) error {
	userID := c.Locals(middlewares.TokenUserID).(string)
	chatID := c.Params("chat_id")
	messageID := c.Params("message_id")

	bucketSequence, err := strconv.ParseInt(c.Params("message_bucket_sequence"), 10, 64)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid bucket sequence"})
	}

	if err := h.mutationUC.UnsendOlder(c.Context(), domain.KindDirect, chatID, messageID, bucketSequence, userID); err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": "Message unsent successfully"})
}

// FetchRecent returns the hot buffer of a direct chat
func (h *MessageHTTPHandler) FetchRecent(c *fiber.Ctx) error {
	return h.fetchRecent(c, domain.KindDirect, c.Params("chat_id"))
}

// FetchRecentGroup returns the hot buffer of a group chat
func (h *MessageHTTPHandler) FetchRecentGroup(c *fiber.Ctx) error {
	return h.fetchRecent(c, domain.KindGroup, c.Params("group_id"))
}

func (h *MessageHTTPHandler) fetchRecent(c *fiber.Ctx, kind domain.ConversationKind, conversationID string) error {
	userID := c.Locals(middlewares.TokenUserID).(string)

	msgs, err := h.messageUC.FetchRecent(c.Context(), kind, conversationID, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"messages": msgs})
}

// FetchOlder returns one archived bucket of a direct chat
func (h *MessageHTTPHandler) FetchOlder(c *fiber.Ctx) error {
	return h.fetchOlder(c, domain.KindDirect, c.Params("chat_id"))
}

// FetchOlderGroup returns one archived bucket of a group chat
func (h *MessageHTTPHandler) FetchOlderGroup(c *fiber.Ctx) error {
	return h.fetchOlder(c, domain.KindGroup, c.Params("group_id"))
}

func (h *MessageHTTPHandler) fetchOlder(c *fiber.Ctx, kind domain.ConversationKind, conversationID string) error {
	userID := c.Locals(middlewares.TokenUserID).(string)

	bucketSequence, err := strconv.ParseInt(c.Params("message_bucket_sequence"), 10, 64)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid bucket sequence"})
	}

	bucket, latestSequence, err := h.messageUC.FetchOlder(c.Context(), kind, conversationID, userID, bucketSequence)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"bucket":                 bucket,
		"latest_bucket_sequence": latestSequence,
	})
}

// DeleteChat applies the two-sided conversation delete
func (h *MessageHTTPHandler) DeleteChat(c *fiber.Ctx) error {
	userID := c.Locals(middlewares.TokenUserID).(string)
	chatID := c.Params("chat_id")

	purged, err := h.mutationUC.DeleteChat(c.Context(), chatID, userID)
	if err != nil {
		return respondError(c, err)
	}
	if purged {
		return c.Status(http.StatusOK).JSON(fiber.Map{"success": "Chat deleted successfully"})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": "Chat marked as deleted for the user"})
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errprocess.ErrNotFound):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, errprocess.ErrPermissionDenied):
		return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}
