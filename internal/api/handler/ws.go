package handler

import (
	"sentra/backend/internal/lifecycle"
	"sentra/backend/internal/live"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ServeLive upgrades to a WebSocket that streams incident events visible
// to the caller. Filters in the query narrow the stream further.
func (h *Handler) ServeLive(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	filters, ok := h.bindFilters(c)
	if !ok {
		return
	}
	if err := lifecycle.Authorize(id, lifecycle.ActionSubscribeLive, nil); err != nil {
		h.fail(c, err)
		return
	}
	scope, err := lifecycle.VisibleIncidentsFor(id, filters)
	if err != nil {
		h.fail(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already answered the client.
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	client := live.NewWebSocketClient(h.Hub, conn, id, scope, h.log)
	if !h.Hub.Register(client) {
		conn.Close()
		return
	}
	client.Run()
}
