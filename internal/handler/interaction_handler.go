package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
	"github.com/noah-isme/ego-calendar-api/pkg/response"
	"github.com/noah-isme/ego-calendar-api/pkg/timeutil"
)

type interactionService interface {
	List(ctx context.Context, filter models.InteractionFilter) ([]models.AIInteraction, *models.Pagination, error)
}

// InteractionHandler lists recorded assistant exchanges.
type InteractionHandler struct {
	service interactionService
	loc     *time.Location
}

// NewInteractionHandler constructs an InteractionHandler. Naive dates in
// filters are read in loc.
func NewInteractionHandler(svc interactionService, loc *time.Location) *InteractionHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &InteractionHandler{service: svc, loc: loc}
}

// List godoc
// @Summary List AI interactions
// @Tags Interactions
// @Produce json
// @Param start_date query string false "Start date or timestamp"
// @Param end_date query string false "End date or timestamp"
// @Param intent query string false "Intent"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /interactions [get]
func (h *InteractionHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	filter := models.InteractionFilter{UserID: userID, Intent: c.Query("intent")}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		filter.PageSize = size
	}
	dates := []struct {
		key  string
		dest **time.Time
	}{{"start_date", &filter.StartDate}, {"end_date", &filter.EndDate}}
	for _, d := range dates {
		raw := c.Query(d.key)
		if raw == "" {
			continue
		}
		parsed, err := timeutil.Parse(raw, h.loc)
		if err != nil {
			response.Error(c, appErrors.Validation("invalid "+d.key))
			return
		}
		*d.dest = &parsed
	}

	items, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}
