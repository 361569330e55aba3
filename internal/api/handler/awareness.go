package handler

import (
	"net/http"

	"sentra/backend/internal/awareness"
	"sentra/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type awarenessRequest struct {
	Title   *string               `json:"title"`
	Content *string               `json:"content"`
	Type    *models.AwarenessType `json:"type"`
	Link    *string               `json:"link" binding:"omitempty,url"`
}

func (r awarenessRequest) input() awareness.Input {
	return awareness.Input{Title: r.Title, Content: r.Content, Type: r.Type, Link: r.Link}
}

// ListAwareness is public.
func (h *Handler) ListAwareness(c *gin.Context) {
	items, err := h.Awareness.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateAwareness(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req awarenessRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.Awareness.Create(c.Request.Context(), id, req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateAwareness(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req awarenessRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.Awareness.Update(c.Request.Context(), id, c.Param("id"), req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteAwareness(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	if err := h.Awareness.Delete(c.Request.Context(), id, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted"})
}
