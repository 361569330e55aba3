package lifecycle

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"sentra/backend/internal/apperr"
	"sentra/backend/internal/config"
	"sentra/backend/internal/models"
)

// NoteIncidentCreated is the note of the first ledger entry of every incident.
const NoteIncidentCreated = "Incident created"

// Draft is the reporter's input for a new incident.
type Draft struct {
	Title        string
	Description  string
	Category     models.Category
	Location     string
	IncidentDate *time.Time
	IsAnonymous  bool
	Priority     models.Priority
	Attachments  []string
}

// Normalize trims free-text fields and applies defaults.
func (d Draft) Normalize() Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Location = strings.TrimSpace(d.Location)
	if d.Priority == "" {
		d.Priority = models.PriorityMedium
	}
	return d
}

// Validate checks a normalized draft and reports every offending field.
func (d Draft) Validate() error {
	var fields []apperr.FieldError
	add := func(field, msg string) {
		fields = append(fields, apperr.FieldError{Field: field, Message: msg})
	}

	if n := utf8.RuneCountInString(d.Title); n < config.TitleMinLen || n > config.TitleMaxLen {
		add("title", fmt.Sprintf("Title must be between %d and %d characters", config.TitleMinLen, config.TitleMaxLen))
	}
	if n := utf8.RuneCountInString(d.Description); n < config.DescriptionMinLen || n > config.DescriptionMaxLen {
		add("description", fmt.Sprintf("Description must be between %d and %d characters", config.DescriptionMinLen, config.DescriptionMaxLen))
	}
	if !d.Category.Valid() {
		add("category", "Invalid category")
	}
	if !d.Priority.Valid() {
		add("priority", "Invalid priority")
	}
	if utf8.RuneCountInString(d.Location) > config.LocationMaxLen {
		add("location", fmt.Sprintf("Location must be less than %d characters", config.LocationMaxLen))
	}
	for _, a := range d.Attachments {
		if strings.TrimSpace(a) == "" {
			add("attachments", "Attachment URLs must not be empty")
			break
		}
	}

	if len(fields) > 0 {
		return apperr.Validation("Validation failed", fields...)
	}
	return nil
}

// NewIncident builds a Pending incident from a draft. An anonymous incident
// never records its reporter, although the creating identity is still
// written to the first ledger entry.
func NewIncident(id Identity, d Draft, reference string, now time.Time) (*models.Incident, error) {
	if err := Authorize(id, ActionCreateIncident, nil); err != nil {
		return nil, err
	}
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if reference == "" {
		return nil, apperr.Unexpected(fmt.Errorf("empty incident reference"))
	}

	inc := &models.Incident{
		ReferenceID:  reference,
		Title:        d.Title,
		Description:  d.Description,
		Category:     d.Category,
		Location:     d.Location,
		IncidentDate: d.IncidentDate,
		IsAnonymous:  d.IsAnonymous,
		Status:       models.StatusPending,
		Priority:     d.Priority,
		Attachments:  append([]string(nil), d.Attachments...),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if !d.IsAnonymous {
		reporter := id.UserID
		inc.ReporterID = &reporter
	}
	inc.AppendHistory(models.HistoryEntry{
		Status:      models.StatusPending,
		ChangedByID: id.UserID,
		Note:        NoteIncidentCreated,
		ChangedAt:   now,
	})
	return inc, nil
}

// ChangeStatus moves inc to target on behalf of id. Every change is
// journaled, with an empty note when none is given. On error inc is left
// untouched.
func ChangeStatus(id Identity, inc *models.Incident, target models.Status, note string, now time.Time) (models.HistoryEntry, error) {
	note = strings.TrimSpace(note)
	if err := ValidateStatusChange(target, note); err != nil {
		return models.HistoryEntry{}, err
	}
	if err := Authorize(id, ActionUpdateStatus, inc); err != nil {
		return models.HistoryEntry{}, err
	}

	entry := models.HistoryEntry{
		Status:      target,
		ChangedByID: id.UserID,
		Note:        note,
		ChangedAt:   now,
	}
	inc.Status = target
	inc.UpdatedAt = now
	inc.AppendHistory(entry)
	return inc.History[len(inc.History)-1], nil
}

// ValidateStatusChange checks the request shape of a status change without
// looking at any incident.
func ValidateStatusChange(target models.Status, note string) error {
	var fields []apperr.FieldError
	if !target.Valid() {
		fields = append(fields, apperr.FieldError{Field: "status", Message: "Invalid status"})
	}
	if utf8.RuneCountInString(strings.TrimSpace(note)) > config.NoteMaxLen {
		fields = append(fields, apperr.FieldError{Field: "note", Message: fmt.Sprintf("Note must be less than %d characters", config.NoteMaxLen)})
	}
	if len(fields) > 0 {
		return apperr.Validation("Validation failed", fields...)
	}
	return nil
}

// Assign hands inc to a staff member. The status is unchanged; the ledger
// records who assigned it and to whom. On error inc is left untouched.
func Assign(id Identity, inc *models.Incident, staff *models.User, now time.Time) (models.HistoryEntry, error) {
	if err := Authorize(id, ActionAssignIncident, inc); err != nil {
		return models.HistoryEntry{}, err
	}
	if inc == nil {
		return models.HistoryEntry{}, apperr.NotFound("Incident not found")
	}
	if staff == nil || staff.Role != models.RoleStaff {
		return models.HistoryEntry{}, apperr.Validation("Valid staff required",
			apperr.FieldError{Field: "assignedTo", Message: "Must reference an existing staff user"})
	}

	staffID := staff.ID
	entry := models.HistoryEntry{
		Status:      inc.Status,
		ChangedByID: id.UserID,
		Note:        "Assigned to " + staff.Name,
		ChangedAt:   now,
	}
	inc.AssigneeID = &staffID
	inc.Assignee = staff
	inc.UpdatedAt = now
	inc.AppendHistory(entry)
	return inc.History[len(inc.History)-1], nil
}
