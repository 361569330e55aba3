package lifecycle

import "sentra/backend/internal/models"

// Identity is the authenticated caller. It is trusted input: credential
// checks happen before an Identity is built.
type Identity struct {
	UserID string
	Role   models.Role
}

func (id Identity) IsAdmin() bool { return id.Role == models.RoleAdmin }
func (id Identity) IsStaff() bool { return id.Role == models.RoleStaff }

// Action names an operation subject to authorization.
type Action string

const (
	ActionCreateIncident  Action = "incident.create"
	ActionListIncidents   Action = "incident.list"
	ActionListMine        Action = "incident.list_mine"
	ActionViewIncident    Action = "incident.view"
	ActionUpdateStatus    Action = "incident.update_status"
	ActionAssignIncident  Action = "incident.assign"
	ActionIncidentStats   Action = "incident.stats"
	ActionExportIncidents Action = "incident.export"
	ActionManageAwareness Action = "awareness.manage"
	ActionListStaff       Action = "users.list_staff"
	ActionSubscribeLive   Action = "live.subscribe"
)
