package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
	"github.com/noah-isme/ego-calendar-api/pkg/response"
)

type eventService interface {
	List(ctx context.Context, userID string) ([]models.Event, error)
	ListByRange(ctx context.Context, userID string, req models.EventRangeRequest) ([]models.Event, error)
	Create(ctx context.Context, userID string, req models.CreateEventRequest) (*models.Event, error)
	Update(ctx context.Context, userID, id string, req models.UpdateEventRequest) (*models.Event, error)
	Delete(ctx context.Context, userID, id string) error
}

// EventHandler exposes explicit calendar CRUD.
type EventHandler struct {
	service eventService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc eventService) *EventHandler {
	return &EventHandler{service: svc}
}

// List godoc
// @Summary List events
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /calendar/get_tasks [get]
func (h *EventHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	events, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// ListByRange godoc
// @Summary List events overlapping a window
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body models.EventRangeRequest true "Window"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar/get_tasks_by_time [post]
func (h *EventHandler) ListByRange(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.EventRangeRequest
	if !bindJSON(c, &req, "invalid time range payload") {
		return
	}
	events, err := h.service.ListByRange(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// Create godoc
// @Summary Create event
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body models.CreateEventRequest true "Event"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar/set_task [post]
func (h *EventHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.CreateEventRequest
	if !bindJSON(c, &req, "invalid event payload") {
		return
	}
	event, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update godoc
// @Summary Update event
// @Tags Calendar
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body models.UpdateEventRequest true "Event patch"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /calendar/update_task/{id} [put]
func (h *EventHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.UpdateEventRequest
	if !bindJSON(c, &req, "invalid event payload") {
		return
	}
	event, err := h.service.Update(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Delete godoc
// @Summary Delete event
// @Tags Calendar
// @Param event_id query string true "Event ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /calendar/delete_task [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id := strings.TrimSpace(c.Query("event_id"))
	if id == "" {
		response.Error(c, appErrors.Validation("event_id is required"))
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
