package incident_test

import (
	"context"
	"sort"
	"sync"

	"sentra/backend/internal/apperr"
	"sentra/backend/internal/lifecycle"
	"sentra/backend/internal/models"
	"sentra/backend/internal/storage"

	"github.com/google/uuid"
)

// fakeStore keeps incidents in memory and applies mutations to a copy, so a
// failed mutation leaves the stored incident untouched like a rolled back
// transaction would.
type fakeStore struct {
	mu         sync.Mutex
	users      map[string]*models.User
	incidents  map[string]*models.Incident
	events     []models.IncidentEvent
	conflicts  int
	publishErr error
}

func newFakeStore(users ...*models.User) *fakeStore {
	s := &fakeStore{
		users:     make(map[string]*models.User),
		incidents: make(map[string]*models.Incident),
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	return u, nil
}

func (s *fakeStore) CreateIncident(_ context.Context, inc *models.Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conflicts > 0 {
		s.conflicts--
		return apperr.Conflict("Reference code already in use", nil)
	}
	for _, existing := range s.incidents {
		if existing.ReferenceID == inc.ReferenceID {
			return apperr.Conflict("Reference code already in use", nil)
		}
	}
	if inc.ID == "" {
		inc.ID = uuid.NewString()
	}
	for i := range inc.History {
		inc.History[i].IncidentID = inc.ID
	}
	s.incidents[inc.ID] = clone(inc)
	return nil
}

func (s *fakeStore) GetIncident(_ context.Context, id string) (*models.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inc, ok := s.incidents[id]
	if !ok {
		return nil, apperr.NotFound("Incident not found")
	}
	return s.expand(clone(inc)), nil
}

func (s *fakeStore) ListIncidents(_ context.Context, scope lifecycle.Scope) ([]models.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Incident{}
	for _, inc := range s.incidents {
		if !scope.Matches(inc) {
			continue
		}
		cp := s.expand(clone(inc))
		if !scope.WithHistory {
			cp.History = nil
		}
		out = append(out, *cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeStore) UpdateIncident(_ context.Context, id string, mutate storage.IncidentMutation) (*models.Incident, error) {
	s.mu.Lock()
	stored, ok := s.incidents[id]
	if !ok {
		s.mu.Unlock()
		return nil, apperr.NotFound("Incident not found")
	}
	working := clone(stored)
	if _, err := mutate(working); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	working.Assignee = nil
	s.incidents[id] = working
	s.mu.Unlock()
	return s.GetIncident(context.Background(), id)
}

func (s *fakeStore) IncidentStats(_ context.Context) (*models.IncidentStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &models.IncidentStats{ByStatus: map[models.Status]int64{}, ByPriority: map[models.Priority]int64{}}
	for _, inc := range s.incidents {
		stats.Total++
		stats.ByStatus[inc.Status]++
		stats.ByPriority[inc.Priority]++
		if inc.AssigneeID == nil {
			stats.Unassigned++
		}
	}
	return stats, nil
}

func (s *fakeStore) PublishIncidentEvent(_ context.Context, ev models.IncidentEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.publishErr != nil {
		return s.publishErr
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *fakeStore) publishedTypes() []models.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.EventType, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Type)
	}
	return out
}

func (s *fakeStore) expand(inc *models.Incident) *models.Incident {
	if inc.ReporterID != nil {
		inc.Reporter = s.users[*inc.ReporterID]
	}
	if inc.AssigneeID != nil {
		inc.Assignee = s.users[*inc.AssigneeID]
	}
	return inc
}

func clone(inc *models.Incident) *models.Incident {
	cp := *inc
	cp.History = append([]models.HistoryEntry(nil), inc.History...)
	cp.Attachments = append([]string(nil), inc.Attachments...)
	if inc.ReporterID != nil {
		v := *inc.ReporterID
		cp.ReporterID = &v
	}
	if inc.AssigneeID != nil {
		v := *inc.AssigneeID
		cp.AssigneeID = &v
	}
	return &cp
}
