package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/medrex/clinical-api/internal/handler"
	"github.com/medrex/clinical-api/pkg/errors"
)

// ErrorHandler maps errors pushed onto the gin context to the uniform
// envelope. Client faults render as "fail", server faults as "error"; no
// error is silently swallowed.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)
		for _, e := range c.Errors {
			log.Error().
				Err(e.Err).
				Str("request_id", requestID).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Msg("request error")
		}

		lastErr := c.Errors.Last().Err

		status := http.StatusInternalServerError
		message := "internal server error"
		var fields []errors.FieldError

		if appErr, ok := errors.As(lastErr); ok {
			status = appErr.StatusCode()
			message = appErr.Message
			fields = appErr.Fields
		}

		resp := handler.NewErrorResponse(message)
		if status < http.StatusInternalServerError {
			resp = handler.NewFailResponse(message)
		}
		resp.Errors = fields

		c.JSON(status, resp)
	}
}
