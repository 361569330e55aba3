package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending  Status = "Pending"
	StatusInReview Status = "In Review"
	StatusResolved Status = "Resolved"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusPending, StatusInReview, StatusResolved}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInReview, StatusResolved:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Rank orders priorities from Low (1) to Critical (4); unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	}
	return 0
}

type Category string

const (
	CategoryAcademic   Category = "Academic"
	CategoryFacilities Category = "Facilities"
	CategorySafety     Category = "Safety"
	CategoryTechnology Category = "Technology"
	CategoryOther      Category = "Other"
)

var Categories = []Category{CategoryAcademic, CategoryFacilities, CategorySafety, CategoryTechnology, CategoryOther}

func (c Category) Valid() bool {
	switch c {
	case CategoryAcademic, CategoryFacilities, CategorySafety, CategoryTechnology, CategoryOther:
		return true
	}
	return false
}

// Incident is a reported issue tracked from Pending to Resolved.
//
// ReferenceID is assigned once at creation. History is append-only: the
// only way to add to it is AppendHistory, and storage never updates or
// deletes history rows.
type Incident struct {
	ID           string         `gorm:"primaryKey" json:"id"`
	ReferenceID  string         `gorm:"uniqueIndex;not null" json:"referenceId"`
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `gorm:"type:text;not null" json:"description"`
	Category     Category       `gorm:"type:text;not null;index" json:"category"`
	Location     string         `json:"location,omitempty"`
	IncidentDate *time.Time     `json:"incidentDate,omitempty"`
	IsAnonymous  bool           `gorm:"not null;index" json:"isAnonymous"`
	ReporterID   *string        `gorm:"index" json:"reporterId,omitempty"`
	Reporter     *User          `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	AssigneeID   *string        `gorm:"index" json:"assignedToId,omitempty"`
	Assignee     *User          `gorm:"foreignKey:AssigneeID" json:"assignedTo,omitempty"`
	Status       Status         `gorm:"type:text;not null;index" json:"status"`
	Priority     Priority       `gorm:"type:text;not null;index" json:"priority"`
	Attachments  pq.StringArray `gorm:"type:text[]" json:"attachments"`
	History      []HistoryEntry `gorm:"foreignKey:IncidentID" json:"history,omitempty"`
	CreatedAt    time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the ID is not set yet.
func (i *Incident) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return
}

// AppendHistory records entry at the end of the ledger.
func (i *Incident) AppendHistory(entry HistoryEntry) {
	entry.IncidentID = i.ID
	i.History = append(i.History, entry)
}

// ReportedBy reports whether userID filed the incident under their name.
func (i *Incident) ReportedBy(userID string) bool {
	return i.ReporterID != nil && *i.ReporterID == userID
}

// AssignedTo reports whether the incident is currently assigned to userID.
func (i *Incident) AssignedTo(userID string) bool {
	return i.AssigneeID != nil && *i.AssigneeID == userID
}

// HistoryEntry is one immutable record of the incident ledger.
type HistoryEntry struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	IncidentID  string    `gorm:"type:text;not null;index:idx_history_incident" json:"-"`
	Status      Status    `gorm:"type:text;not null" json:"status"`
	ChangedByID string    `gorm:"type:text;not null" json:"changedBy"`
	Note        string    `gorm:"type:text" json:"note"`
	ChangedAt   time.Time `gorm:"not null;index:idx_history_incident" json:"changedAt"`
}

func (HistoryEntry) TableName() string {
	return "incident_history"
}

// IncidentFilters are the optional query filters of the incident listing.
type IncidentFilters struct {
	Status   Status   `form:"status"`
	Category Category `form:"category"`
	Priority Priority `form:"priority"`
}

// IncidentStats are the dashboard counters.
type IncidentStats struct {
	Total      int64              `json:"total"`
	ByStatus   map[Status]int64   `json:"byStatus"`
	ByPriority map[Priority]int64 `json:"byPriority"`
	Unassigned int64              `json:"unassigned"`
}
