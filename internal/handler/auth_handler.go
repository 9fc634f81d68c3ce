package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
	"github.com/noah-isme/ego-calendar-api/pkg/response"
)

const googleStateCookie = "google_oauth_state"

type authService interface {
	Register(ctx context.Context, req models.RegisterRequest, ip, userAgent string) (*models.LoginResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	RefreshToken(ctx context.Context, req models.RefreshTokenRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context, refreshToken string, userID string) error
}

// GoogleAuth is the Google sign-in flow.
type GoogleAuth interface {
	AuthURL(state string) string
	Callback(ctx context.Context, code, ip, userAgent string) (*models.LoginResponse, error)
}

// AuthHandler wires HTTP endpoints to the auth services.
type AuthHandler struct {
	service authService
	google  GoogleAuth
}

// NewAuthHandler creates a new handler. google may be nil when Google sign-in
// is not configured.
func NewAuthHandler(svc authService, google GoogleAuth) *AuthHandler {
	return &AuthHandler{service: svc, google: google}
}

// Register godoc
// @Summary Register account
// @Description Create an account with email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req, "invalid registration payload") {
		return
	}
	res, err := h.service.Register(c.Request.Context(), req, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate user by email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req, "invalid login payload") {
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Refresh godoc
// @Summary Refresh access token
// @Description Exchange refresh token for new access token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.RefreshTokenRequest true "Refresh payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshTokenRequest
	if !bindJSON(c, &req, "invalid refresh payload") {
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.RefreshToken(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Logout godoc
// @Summary Logout current session
// @Description Revoke refresh token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.RefreshTokenRequest true "Refresh token"
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var payload struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if !bindJSON(c, &payload, "refresh token required") {
		return
	}

	if err := h.service.Logout(c.Request.Context(), payload.RefreshToken, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// GoogleURL godoc
// @Summary Google sign-in URL
// @Description Returns the consent URL and sets the anti-forgery state cookie
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /auth/google/url [get]
func (h *AuthHandler) GoogleURL(c *gin.Context) {
	if h.google == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "google sign-in is not configured"))
		return
	}
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create state"))
		return
	}
	state := hex.EncodeToString(buf)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(googleStateCookie, state, 600, "/", "", c.Request.TLS != nil, true)
	response.JSON(c, http.StatusOK, gin.H{"url": h.google.AuthURL(state), "state": state}, nil)
}

// GoogleCallback godoc
// @Summary Google sign-in callback
// @Description Exchanges the authorization code and issues tokens
// @Tags Authentication
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string true "State"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.google == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "google sign-in is not configured"))
		return
	}
	code := c.Query("code")
	if code == "" {
		response.Error(c, appErrors.Validation("code is required"))
		return
	}
	if expected, err := c.Cookie(googleStateCookie); err == nil && expected != c.Query("state") {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "state mismatch"))
		return
	}

	res, err := h.google.Callback(c.Request.Context(), code, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
