package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	"github.com/noah-isme/ego-calendar-api/pkg/response"
)

type interpretService interface {
	Interpret(ctx context.Context, userID string, req models.InterpretRequest) (*models.InterpretResult, error)
}

// InterpretHandler turns free text into calendar mutations.
type InterpretHandler struct {
	service interpretService
}

// NewInterpretHandler constructs an InterpretHandler.
func NewInterpretHandler(svc interpretService) *InterpretHandler {
	return &InterpretHandler{service: svc}
}

// Interpret godoc
// @Summary Interpret a calendar request
// @Description Applies a natural-language or JSON intent to the caller's calendar
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body models.InterpretRequest true "Request"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /calendar/interpret [post]
func (h *InterpretHandler) Interpret(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.InterpretRequest
	if !bindJSON(c, &req, "invalid interpret payload") {
		return
	}
	result, err := h.service.Interpret(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, result)
}
