package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ego-calendar-api/internal/service"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
	"github.com/noah-isme/ego-calendar-api/pkg/response"
)

type exportService interface {
	Link(ctx context.Context, userID, format string) (*service.ExportLink, error)
	Download(ctx context.Context, token string) (*service.ExportFile, error)
}

// ExportHandler issues and serves calendar exports.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Link godoc
// @Summary Create an export link
// @Tags Calendar
// @Produce json
// @Param format query string false "csv, pdf or ics"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar/export [get]
func (h *ExportHandler) Link(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	link, err := h.service.Link(c.Request.Context(), userID, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, link)
}

// Download godoc
// @Summary Download an export
// @Tags Calendar
// @Produce octet-stream
// @Param token query string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /calendar/export/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Validation("token is required"))
		return
	}
	file, err := h.service.Download(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
