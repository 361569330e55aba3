// Package response writes the JSON error bodies shared by handlers and
// middleware.
package response

import (
	"sentra/backend/internal/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorBody is the error payload of every failed request.
type ErrorBody struct {
	Message string              `json:"message"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

// Error aborts the request with the status and public message of err.
// Unexpected errors are logged in full and answered with a generic message.
func Error(c *gin.Context, log *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindUnexpected {
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	msg, fields := apperr.Public(err)
	c.AbortWithStatusJSON(apperr.HTTPStatus(kind), ErrorBody{Message: msg, Errors: fields})
}
