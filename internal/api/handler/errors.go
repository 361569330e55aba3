package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"sentra/backend/internal/api/middleware"
	"sentra/backend/internal/api/response"
	"sentra/backend/internal/apperr"
	"sentra/backend/internal/lifecycle"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var fieldNamesOnce sync.Once

// useJSONFieldNames makes validator report fields by their JSON name.
func useJSONFieldNames() {
	fieldNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

func (h *Handler) fail(c *gin.Context, err error) {
	response.Error(c, h.log, err)
}

// bindJSON decodes the body into dst and turns decoding or binding-tag
// failures into validation errors.
func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.fail(c, bindingError(err))
		return false
	}
	return true
}

func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("Invalid request body")
	}
	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperr.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return apperr.Validation("Validation failed", fields...)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Valid email is required"
	case "url":
		return "Must be a valid URL"
	case "max":
		return fmt.Sprintf("%s must have at most %s items", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// identity returns the caller or aborts with 401. Routes behind
// middleware.Authenticate always have one.
func (h *Handler) identity(c *gin.Context) (lifecycle.Identity, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		h.fail(c, apperr.Unauthenticated("Authorization token required"))
	}
	return id, ok
}
