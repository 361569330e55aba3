// Package handler implements the HTTP endpoints of the /api surface.
package handler

import (
	"context"
	"io"
	"net/http"

	"sentra/backend/internal/auth"
	"sentra/backend/internal/awareness"
	"sentra/backend/internal/lifecycle"
	"sentra/backend/internal/live"
	"sentra/backend/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	Me(ctx context.Context, id lifecycle.Identity) (*models.User, error)
	Logout(ctx context.Context, claims *auth.Claims) error
}

type IncidentService interface {
	Create(ctx context.Context, id lifecycle.Identity, draft lifecycle.Draft) (*models.Incident, error)
	ListMine(ctx context.Context, id lifecycle.Identity) ([]models.Incident, error)
	List(ctx context.Context, id lifecycle.Identity, filters models.IncidentFilters) ([]models.Incident, error)
	Get(ctx context.Context, id lifecycle.Identity, incidentID string) (*models.Incident, error)
	UpdateStatus(ctx context.Context, id lifecycle.Identity, incidentID string, target models.Status, note string) (*models.Incident, error)
	Assign(ctx context.Context, id lifecycle.Identity, incidentID, staffID string) (*models.Incident, error)
	Stats(ctx context.Context, id lifecycle.Identity) (*models.IncidentStats, error)
	Export(ctx context.Context, id lifecycle.Identity, filters models.IncidentFilters, w io.Writer) error
}

type AwarenessService interface {
	List(ctx context.Context) ([]models.Awareness, error)
	Create(ctx context.Context, id lifecycle.Identity, in awareness.Input) (*models.Awareness, error)
	Update(ctx context.Context, id lifecycle.Identity, itemID string, in awareness.Input) (*models.Awareness, error)
	Delete(ctx context.Context, id lifecycle.Identity, itemID string) error
}

type StaffDirectory interface {
	ListStaff(ctx context.Context) ([]models.StaffMember, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the services behind the HTTP endpoints.
type Handler struct {
	Auth      AuthService
	Incidents IncidentService
	Awareness AwarenessService
	Staff     StaffDirectory
	Health    Pinger
	Hub       *live.Hub

	upgrader websocket.Upgrader
	log      *zap.Logger
}

type Deps struct {
	Auth           AuthService
	Incidents      IncidentService
	Awareness      AwarenessService
	Staff          StaffDirectory
	Health         Pinger
	Hub            *live.Hub
	AllowedOrigins []string
	Log            *zap.Logger
}

func NewHandler(d Deps) *Handler {
	useJSONFieldNames()
	return &Handler{
		Auth:      d.Auth,
		Incidents: d.Incidents,
		Awareness: d.Awareness,
		Staff:     d.Staff,
		Health:    d.Health,
		Hub:       d.Hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(d.AllowedOrigins),
		},
		log: d.Log,
	}
}

// originChecker accepts requests without an Origin header and those from
// the configured origins. "*" allows any origin.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set["*"]; ok {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
