// Package respond writes handler results and maps application errors onto
// HTTP statuses.
package respond

import (
	"errors"
	"net/http"

	"fabtrack/internal/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// Error maps err to its status. Server-side failures are logged with their
// causes; the client only sees the message.
func Error(c *gin.Context, err error) {
	status := apperrors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		ev := log.Ctx(c.Request.Context()).Error().Int("status", status)
		var ae apperrors.Error
		if errors.As(err, &ae) {
			ev = ev.Str("detail", ae.ErrorAll())
		}
		ev.Err(err).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
