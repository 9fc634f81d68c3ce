package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	"github.com/noah-isme/ego-calendar-api/pkg/response"
)

type reminderService interface {
	List(ctx context.Context, userID string) ([]models.Reminder, error)
	Get(ctx context.Context, userID, id string) (*models.Reminder, error)
	Create(ctx context.Context, userID string, req models.CreateReminderRequest) (*models.Reminder, error)
	Update(ctx context.Context, userID, id string, req models.UpdateReminderRequest) (*models.Reminder, error)
	Delete(ctx context.Context, userID, id string) error
}

// ReminderHandler manages event reminders.
type ReminderHandler struct {
	service reminderService
}

// NewReminderHandler constructs a ReminderHandler.
func NewReminderHandler(svc reminderService) *ReminderHandler {
	return &ReminderHandler{service: svc}
}

// List godoc
// @Summary List reminders
// @Tags Reminders
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reminders [get]
func (h *ReminderHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	reminders, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, reminders)
}

// Get godoc
// @Summary Get reminder
// @Tags Reminders
// @Produce json
// @Param id path string true "Reminder ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reminders/{id} [get]
func (h *ReminderHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	reminder, err := h.service.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, reminder)
}

// Create godoc
// @Summary Create reminder
// @Tags Reminders
// @Accept json
// @Produce json
// @Param payload body models.CreateReminderRequest true "Reminder"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reminders [post]
func (h *ReminderHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.CreateReminderRequest
	if !bindJSON(c, &req, "invalid reminder payload") {
		return
	}
	reminder, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reminder)
}

// Update godoc
// @Summary Update reminder
// @Tags Reminders
// @Accept json
// @Produce json
// @Param id path string true "Reminder ID"
// @Param payload body models.UpdateReminderRequest true "Reminder patch"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reminders/{id} [put]
func (h *ReminderHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.UpdateReminderRequest
	if !bindJSON(c, &req, "invalid reminder payload") {
		return
	}
	reminder, err := h.service.Update(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, reminder)
}

// Delete godoc
// @Summary Delete reminder
// @Tags Reminders
// @Param id path string true "Reminder ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /reminders/{id} [delete]
func (h *ReminderHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
