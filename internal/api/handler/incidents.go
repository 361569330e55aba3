package handler

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"sentra/backend/internal/apperr"
	"sentra/backend/internal/export"
	"sentra/backend/internal/lifecycle"
	"sentra/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type createIncidentRequest struct {
	Title        string          `json:"title" binding:"required"`
	Description  string          `json:"description" binding:"required"`
	Category     models.Category `json:"category" binding:"required"`
	Location     string          `json:"location"`
	IncidentDate string          `json:"incidentDate"`
	IsAnonymous  bool            `json:"isAnonymous"`
	Priority     models.Priority `json:"priority"`
	Attachments  []string        `json:"attachments" binding:"omitempty,max=10,dive,url"`
}

type updateStatusRequest struct {
	Status models.Status `json:"status" binding:"required"`
	Note   string        `json:"note"`
}

// assignRequest accepts the staff id as assignedTo or, from older clients,
// staffId.
type assignRequest struct {
	AssignedTo string `json:"assignedTo"`
	StaffID    string `json:"staffId"`
}

func (r assignRequest) staff() string {
	if r.AssignedTo != "" {
		return r.AssignedTo
	}
	return r.StaffID
}

// parseIncidentDate accepts a calendar date or an RFC 3339 timestamp.
func parseIncidentDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperr.Validation("Validation failed",
		apperr.FieldError{Field: "incidentDate", Message: "Must be a date (YYYY-MM-DD) or RFC 3339 timestamp"})
}

func (h *Handler) CreateIncident(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req createIncidentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	date, err := parseIncidentDate(req.IncidentDate)
	if err != nil {
		h.fail(c, err)
		return
	}

	inc, err := h.Incidents.Create(c.Request.Context(), id, lifecycle.Draft{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Location:     req.Location,
		IncidentDate: date,
		IsAnonymous:  req.IsAnonymous,
		Priority:     req.Priority,
		Attachments:  req.Attachments,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, inc)
}

func (h *Handler) ListMyIncidents(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	incidents, err := h.Incidents.ListMine(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, incidents)
}

func (h *Handler) ListIncidents(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	filters, ok := h.bindFilters(c)
	if !ok {
		return
	}
	incidents, err := h.Incidents.List(c.Request.Context(), id, filters)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, incidents)
}

func (h *Handler) bindFilters(c *gin.Context) (models.IncidentFilters, bool) {
	var filters models.IncidentFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		h.fail(c, apperr.Validation("Invalid query parameters"))
		return filters, false
	}
	return filters, true
}

func (h *Handler) GetIncident(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	inc, err := h.Incidents.Get(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, inc)
}

func (h *Handler) UpdateIncidentStatus(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	inc, err := h.Incidents.UpdateStatus(c.Request.Context(), id, c.Param("id"), req.Status, req.Note)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, inc)
}

func (h *Handler) AssignIncident(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req assignRequest
	if !h.bindJSON(c, &req) {
		return
	}
	inc, err := h.Incidents.Assign(c.Request.Context(), id, c.Param("id"), req.staff())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, inc)
}

func (h *Handler) IncidentStats(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	stats, err := h.Incidents.Stats(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportIncidents streams an XLSX workbook of the filtered listing.
func (h *Handler) ExportIncidents(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	filters, ok := h.bindFilters(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.Incidents.Export(c.Request.Context(), id, filters, &buf); err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.FileName(time.Now())+`"`)
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
