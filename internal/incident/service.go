// Package incident coordinates the incident lifecycle with persistence and
// the side channels (live feed and duty notifications) that follow every
// committed change.
package incident

import (
	"context"
	"io"
	"strings"
	"time"

	"sentra/backend/internal/apperr"
	"sentra/backend/internal/export"
	"sentra/backend/internal/lifecycle"
	"sentra/backend/internal/models"
	"sentra/backend/internal/storage"

	"go.uber.org/zap"
)

// Store is the persistence the incident service needs.
type Store interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreateIncident(ctx context.Context, inc *models.Incident) error
	GetIncident(ctx context.Context, id string) (*models.Incident, error)
	ListIncidents(ctx context.Context, scope lifecycle.Scope) ([]models.Incident, error)
	UpdateIncident(ctx context.Context, id string, mutate storage.IncidentMutation) (*models.Incident, error)
	IncidentStats(ctx context.Context) (*models.IncidentStats, error)
	PublishIncidentEvent(ctx context.Context, ev models.IncidentEvent) error
}

type Notifier interface {
	Notify(ctx context.Context, ev models.IncidentEvent, inc *models.Incident) error
}

type Service struct {
	store      Store
	notifier   Notifier
	references lifecycle.ReferenceGenerator
	now        func() time.Time
	log        *zap.Logger
}

type Option func(*Service)

func WithReferenceGenerator(g lifecycle.ReferenceGenerator) Option {
	return func(s *Service) { s.references = g }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, notifier Notifier, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:      store,
		notifier:   notifier,
		references: lifecycle.NewReference,
		now:        time.Now,
		log:        log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create files a new incident. A reference code collision is retried once
// with a fresh code before it is reported.
func (s *Service) Create(ctx context.Context, id lifecycle.Identity, draft lifecycle.Draft) (*models.Incident, error) {
	const attempts = 2
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		now := s.now()
		var inc *models.Incident
		inc, err = lifecycle.NewIncident(id, draft, s.references(now), now)
		if err != nil {
			return nil, err
		}

		err = s.store.CreateIncident(ctx, inc)
		if apperr.Is(err, apperr.KindConflict) && attempt < attempts {
			s.log.Warn("incident reference collision, retrying", zap.String("reference_id", inc.ReferenceID))
			continue
		}
		if err != nil {
			return nil, err
		}

		s.log.Info("incident created",
			zap.String("incident_id", inc.ID),
			zap.String("reference_id", inc.ReferenceID),
			zap.String("priority", string(inc.Priority)),
			zap.Bool("anonymous", inc.IsAnonymous))
		s.announce(ctx, models.EventIncidentCreated, inc, id.UserID)
		return inc, nil
	}
	return nil, err
}

// ListMine returns the caller's incidents without history.
func (s *Service) ListMine(ctx context.Context, id lifecycle.Identity) ([]models.Incident, error) {
	scope, err := lifecycle.MineScope(id)
	if err != nil {
		return nil, err
	}
	return s.store.ListIncidents(ctx, scope)
}

// List returns every incident visible to an admin or staff member.
func (s *Service) List(ctx context.Context, id lifecycle.Identity, filters models.IncidentFilters) ([]models.Incident, error) {
	scope, err := lifecycle.VisibleIncidentsFor(id, filters)
	if err != nil {
		return nil, err
	}
	return s.store.ListIncidents(ctx, scope)
}

func (s *Service) Get(ctx context.Context, id lifecycle.Identity, incidentID string) (*models.Incident, error) {
	inc, err := s.store.GetIncident(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Authorize(id, lifecycle.ActionViewIncident, inc); err != nil {
		return nil, err
	}
	return inc, nil
}

// UpdateStatus changes the status and journals it atomically. The caller's
// permission is checked against the locked row.
func (s *Service) UpdateStatus(ctx context.Context, id lifecycle.Identity, incidentID string, target models.Status, note string) (*models.Incident, error) {
	if err := lifecycle.ValidateStatusChange(target, note); err != nil {
		return nil, err
	}

	inc, err := s.store.UpdateIncident(ctx, incidentID, func(locked *models.Incident) (models.HistoryEntry, error) {
		return lifecycle.ChangeStatus(id, locked, target, note, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("incident status changed",
		zap.String("incident_id", inc.ID),
		zap.String("status", string(inc.Status)),
		zap.String("actor_id", id.UserID))
	s.announce(ctx, models.EventIncidentStatusChanged, inc, id.UserID)
	return inc, nil
}

// Assign hands the incident to a staff member.
func (s *Service) Assign(ctx context.Context, id lifecycle.Identity, incidentID, staffID string) (*models.Incident, error) {
	if err := lifecycle.Authorize(id, lifecycle.ActionAssignIncident, nil); err != nil {
		return nil, err
	}
	staffID = strings.TrimSpace(staffID)
	if staffID == "" {
		return nil, apperr.Validation("Valid staff required",
			apperr.FieldError{Field: "assignedTo", Message: "Staff user id is required"})
	}

	staff, err := s.store.GetUserByID(ctx, staffID)
	if apperr.Is(err, apperr.KindNotFound) {
		staff, err = nil, nil
	}
	if err != nil {
		return nil, err
	}

	inc, err := s.store.UpdateIncident(ctx, incidentID, func(locked *models.Incident) (models.HistoryEntry, error) {
		return lifecycle.Assign(id, locked, staff, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("incident assigned",
		zap.String("incident_id", inc.ID),
		zap.String("assignee_id", staffID),
		zap.String("actor_id", id.UserID))
	s.announce(ctx, models.EventIncidentAssigned, inc, id.UserID)
	return inc, nil
}

func (s *Service) Stats(ctx context.Context, id lifecycle.Identity) (*models.IncidentStats, error) {
	if err := lifecycle.Authorize(id, lifecycle.ActionIncidentStats, nil); err != nil {
		return nil, err
	}
	return s.store.IncidentStats(ctx)
}

// Export writes the filtered incident listing to w as an XLSX workbook.
func (s *Service) Export(ctx context.Context, id lifecycle.Identity, filters models.IncidentFilters, w io.Writer) error {
	if err := lifecycle.Authorize(id, lifecycle.ActionExportIncidents, nil); err != nil {
		return err
	}
	scope, err := lifecycle.VisibleIncidentsFor(id, filters)
	if err != nil {
		return err
	}
	scope.WithHistory = false

	incidents, err := s.store.ListIncidents(ctx, scope)
	if err != nil {
		return err
	}
	if err := export.WriteIncidents(w, incidents); err != nil {
		return apperr.Unexpected(err)
	}
	return nil
}

// announce fans a committed change out to the live feed and the duty
// channel. Failures are logged; the change itself already succeeded.
func (s *Service) announce(ctx context.Context, typ models.EventType, inc *models.Incident, actorID string) {
	ev := models.NewIncidentEvent(typ, inc, actorID, s.now())
	if err := s.store.PublishIncidentEvent(ctx, ev); err != nil {
		s.log.Warn("publish incident event failed", zap.String("event", string(typ)), zap.String("incident_id", inc.ID), zap.Error(err))
	}
	if err := s.notifier.Notify(ctx, ev, inc); err != nil {
		s.log.Warn("duty notification failed", zap.String("event", string(typ)), zap.String("incident_id", inc.ID), zap.Error(err))
	}
}
