package models

import "time"

type EventType string

const (
	EventIncidentCreated       EventType = "incident.created"
	EventIncidentStatusChanged EventType = "incident.status_changed"
	EventIncidentAssigned      EventType = "incident.assigned"
)

// IncidentEvent is published after every committed incident change and
// fanned out to live dashboard subscribers.
type IncidentEvent struct {
	Type        EventType `json:"type"`
	IncidentID  string    `json:"incidentId"`
	ReferenceID string    `json:"referenceId"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	Category    Category  `json:"category"`
	AssigneeID  string    `json:"assignedToId,omitempty"`
	ActorID     string    `json:"actorId"`
	At          time.Time `json:"at"`
}

// NewIncidentEvent snapshots inc for an event of the given type.
func NewIncidentEvent(t EventType, inc *Incident, actorID string, at time.Time) IncidentEvent {
	ev := IncidentEvent{
		Type:        t,
		IncidentID:  inc.ID,
		ReferenceID: inc.ReferenceID,
		Status:      inc.Status,
		Priority:    inc.Priority,
		Category:    inc.Category,
		ActorID:     actorID,
		At:          at,
	}
	if inc.AssigneeID != nil {
		ev.AssigneeID = *inc.AssigneeID
	}
	return ev
}

// Snapshot rebuilds the visibility-relevant fields of the incident the
// event was taken from.
func (e IncidentEvent) Snapshot() *Incident {
	inc := &Incident{
		ID:          e.IncidentID,
		ReferenceID: e.ReferenceID,
		Status:      e.Status,
		Priority:    e.Priority,
		Category:    e.Category,
	}
	if e.AssigneeID != "" {
		assignee := e.AssigneeID
		inc.AssigneeID = &assignee
	}
	return inc
}
