package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ego-calendar-api/internal/middleware"
	"github.com/noah-isme/ego-calendar-api/internal/models"
	"github.com/noah-isme/ego-calendar-api/pkg/response"
)

type chatService interface {
	Chat(ctx context.Context, userID string, req models.ChatRequest) (*models.ChatResponse, error)
	Messages(ctx context.Context, userID string) ([]models.ChatMessage, error)
	AddMessage(ctx context.Context, userID string, req models.AddMessageRequest) (*models.ChatMessage, error)
	ClearMessages(ctx context.Context, userID string) error
}

type rescheduleService interface {
	Reschedule(ctx context.Context, userID string, req models.RescheduleRequest) (*models.RescheduleResponse, error)
}

// ChatHandler serves the conversational endpoints.
type ChatHandler struct {
	chat       chatService
	reschedule rescheduleService
}

// NewChatHandler constructs a ChatHandler.
func NewChatHandler(chat chatService, reschedule rescheduleService) *ChatHandler {
	return &ChatHandler{chat: chat, reschedule: reschedule}
}

// Chat godoc
// @Summary Chat with the assistant
// @Tags Chat
// @Accept json
// @Produce json
// @Param payload body models.ChatRequest true "Message"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.ChatRequest
	if !bindJSON(c, &req, "invalid chat payload") {
		return
	}
	res, err := h.chat.Chat(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "history_compressed", res.Compressed)
	respondOK(c, res)
}

// Messages godoc
// @Summary List stored chat history
// @Tags Chat
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /chat/messages [get]
func (h *ChatHandler) Messages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	messages, err := h.chat.Messages(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, messages)
}

// AddMessage godoc
// @Summary Append a chat message
// @Tags Chat
// @Accept json
// @Produce json
// @Param payload body models.AddMessageRequest true "Message"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /chat/messages [post]
func (h *ChatHandler) AddMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.AddMessageRequest
	if !bindJSON(c, &req, "invalid message payload") {
		return
	}
	msg, err := h.chat.AddMessage(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, msg)
}

// ClearMessages godoc
// @Summary Clear chat history
// @Tags Chat
// @Success 204
// @Router /chat/messages [delete]
func (h *ChatHandler) ClearMessages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.chat.ClearMessages(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reschedule godoc
// @Summary Suggest a rescheduled calendar
// @Tags Chat
// @Accept json
// @Produce json
// @Param payload body models.RescheduleRequest false "Calendar override"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /reschedule [post]
func (h *ChatHandler) Reschedule(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.RescheduleRequest
	if c.Request.ContentLength != 0 {
		if !bindJSON(c, &req, "invalid reschedule payload") {
			return
		}
	}
	res, err := h.reschedule.Reschedule(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, res)
}
