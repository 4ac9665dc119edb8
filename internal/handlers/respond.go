package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"photoselect/internal/apperror"
)

// fail maps a service error onto its HTTP status. Unexpected errors
// are logged and collapsed to a generic 500 in production; development
// exposes the detail.
func (h HandlerSet) fail(c *gin.Context, err error) {
	status := apperror.Status(err)

	var appErr *apperror.Error
	if errors.As(err, &appErr) && status != http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": string(appErr.Kind), "message": appErr.Msg})
		return
	}

	h.log.Error().Err(err).
		Str("path", c.Request.URL.Path).
		Msg("request failed")

	if h.cfg.IsProduction() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server", "message": "internal server error"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "server", "message": err.Error()})
}
