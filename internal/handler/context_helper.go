package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ego-calendar-api/internal/middleware"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
	"github.com/noah-isme/ego-calendar-api/pkg/response"
)

// currentUserID returns the authenticated user's id, writing a 401 when absent.
func currentUserID(c *gin.Context) (string, bool) {
	claims := middleware.Claims(c)
	if claims == nil || claims.UserID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return claims.UserID, true
}

// bindJSON decodes the request body, writing a 400 on failure.
func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}

func respondOK(c *gin.Context, data interface{}) {
	response.JSON(c, http.StatusOK, data, nil, middleware.ExtractMeta(c))
}
