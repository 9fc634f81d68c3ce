package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	"github.com/noah-isme/ego-calendar-api/pkg/response"
)

type recommendationService interface {
	Recommend(ctx context.Context, userID string) (*models.RecommendationResponse, error)
}

// RecommendationHandler serves activity suggestions.
type RecommendationHandler struct {
	service recommendationService
}

// NewRecommendationHandler constructs a RecommendationHandler.
func NewRecommendationHandler(svc recommendationService) *RecommendationHandler {
	return &RecommendationHandler{service: svc}
}

// Recommend godoc
// @Summary Recommend activities
// @Description Suggests activities from the profile, local weather, time and nearby places
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /calendar/recommend [get]
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	res, err := h.service.Recommend(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, res)
}
