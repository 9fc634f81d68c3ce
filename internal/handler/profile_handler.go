package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	"github.com/noah-isme/ego-calendar-api/pkg/response"
)

type profileService interface {
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	Create(ctx context.Context, userID string, req models.CreateProfileRequest) (*models.UserProfile, error)
	Update(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.UserProfile, error)
	WithWeather(ctx context.Context, userID string) (*models.ProfileWithWeather, error)
}

type settingsService interface {
	Get(ctx context.Context, userID string) (*models.UserSettings, error)
	Upsert(ctx context.Context, userID string, req models.UpsertSettingsRequest) (*models.UserSettings, error)
}

// ProfileHandler serves the personal profile and locale settings.
type ProfileHandler struct {
	profiles profileService
	settings settingsService
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(profiles profileService, settings settingsService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, settings: settings}
}

// Get godoc
// @Summary Get profile
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	profile, err := h.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, profile)
}

// Create godoc
// @Summary Create profile
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body models.CreateProfileRequest true "Profile"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /profile [post]
func (h *ProfileHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.CreateProfileRequest
	if !bindJSON(c, &req, "invalid profile payload") {
		return
	}
	profile, err := h.profiles.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, profile)
}

// Update godoc
// @Summary Update profile
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body models.UpdateProfileRequest true "Profile patch"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profile [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if !bindJSON(c, &req, "invalid profile payload") {
		return
	}
	profile, err := h.profiles.Update(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, profile)
}

// Weather godoc
// @Summary Profile with hometown weather
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profile/weather [get]
func (h *ProfileHandler) Weather(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	res, err := h.profiles.WithWeather(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, res)
}

// Settings godoc
// @Summary Get locale settings
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *ProfileHandler) Settings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	settings, err := h.settings.Get(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, settings)
}

// UpsertSettings godoc
// @Summary Create or update locale settings
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body models.UpsertSettingsRequest true "Settings"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /settings [put]
func (h *ProfileHandler) UpsertSettings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.UpsertSettingsRequest
	if !bindJSON(c, &req, "invalid settings payload") {
		return
	}
	settings, err := h.settings.Upsert(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, settings)
}
