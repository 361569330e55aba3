package handler

import (
	"context"
	"net/http"
	"time"

	"sentra/backend/internal/lifecycle"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListStaff returns the staff directory used by the assignment form.
func (h *Handler) ListStaff(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	if err := lifecycle.Authorize(id, lifecycle.ActionListStaff, nil); err != nil {
		h.fail(c, err)
		return
	}
	staff, err := h.Staff.ListStaff(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, staff)
}

// HealthCheck reports whether the database and Redis answer.
func (h *Handler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.Health.Ping(ctx); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
