package api_test

import (
	"context"
	"io"

	"sentra/backend/internal/apperr"
	"sentra/backend/internal/auth"
	"sentra/backend/internal/awareness"
	"sentra/backend/internal/lifecycle"
	"sentra/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// fakeAuthenticator maps raw tokens to claims.
type fakeAuthenticator map[string]*auth.Claims

func (f fakeAuthenticator) Authenticate(_ context.Context, raw string) (*auth.Claims, error) {
	if c, ok := f[raw]; ok {
		return c, nil
	}
	return nil, apperr.Unauthenticated("Invalid or expired token")
}

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) Register(ctx context.Context, in auth.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*auth.Session, error) {
	args := m.Called(ctx, email, password)
	s, _ := args.Get(0).(*auth.Session)
	return s, args.Error(1)
}

func (m *MockAuthService) Me(ctx context.Context, id lifecycle.Identity) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	return m.Called(ctx, claims).Error(0)
}

type MockIncidentService struct{ mock.Mock }

func (m *MockIncidentService) Create(ctx context.Context, id lifecycle.Identity, draft lifecycle.Draft) (*models.Incident, error) {
	args := m.Called(ctx, id, draft)
	inc, _ := args.Get(0).(*models.Incident)
	return inc, args.Error(1)
}

func (m *MockIncidentService) ListMine(ctx context.Context, id lifecycle.Identity) ([]models.Incident, error) {
	args := m.Called(ctx, id)
	list, _ := args.Get(0).([]models.Incident)
	return list, args.Error(1)
}

func (m *MockIncidentService) List(ctx context.Context, id lifecycle.Identity, filters models.IncidentFilters) ([]models.Incident, error) {
	args := m.Called(ctx, id, filters)
	list, _ := args.Get(0).([]models.Incident)
	return list, args.Error(1)
}

func (m *MockIncidentService) Get(ctx context.Context, id lifecycle.Identity, incidentID string) (*models.Incident, error) {
	args := m.Called(ctx, id, incidentID)
	inc, _ := args.Get(0).(*models.Incident)
	return inc, args.Error(1)
}

func (m *MockIncidentService) UpdateStatus(ctx context.Context, id lifecycle.Identity, incidentID string, target models.Status, note string) (*models.Incident, error) {
	args := m.Called(ctx, id, incidentID, target, note)
	inc, _ := args.Get(0).(*models.Incident)
	return inc, args.Error(1)
}

func (m *MockIncidentService) Assign(ctx context.Context, id lifecycle.Identity, incidentID, staffID string) (*models.Incident, error) {
	args := m.Called(ctx, id, incidentID, staffID)
	inc, _ := args.Get(0).(*models.Incident)
	return inc, args.Error(1)
}

func (m *MockIncidentService) Stats(ctx context.Context, id lifecycle.Identity) (*models.IncidentStats, error) {
	args := m.Called(ctx, id)
	st, _ := args.Get(0).(*models.IncidentStats)
	return st, args.Error(1)
}

func (m *MockIncidentService) Export(ctx context.Context, id lifecycle.Identity, filters models.IncidentFilters, w io.Writer) error {
	args := m.Called(ctx, id, filters, w)
	if err := args.Error(0); err != nil {
		return err
	}
	_, err := io.WriteString(w, "xlsx")
	return err
}

type MockAwarenessService struct{ mock.Mock }

func (m *MockAwarenessService) List(ctx context.Context) ([]models.Awareness, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]models.Awareness)
	return list, args.Error(1)
}

func (m *MockAwarenessService) Create(ctx context.Context, id lifecycle.Identity, in awareness.Input) (*models.Awareness, error) {
	args := m.Called(ctx, id, in)
	a, _ := args.Get(0).(*models.Awareness)
	return a, args.Error(1)
}

func (m *MockAwarenessService) Update(ctx context.Context, id lifecycle.Identity, itemID string, in awareness.Input) (*models.Awareness, error) {
	args := m.Called(ctx, id, itemID, in)
	a, _ := args.Get(0).(*models.Awareness)
	return a, args.Error(1)
}

func (m *MockAwarenessService) Delete(ctx context.Context, id lifecycle.Identity, itemID string) error {
	return m.Called(ctx, id, itemID).Error(0)
}

type MockStaffDirectory struct{ mock.Mock }

func (m *MockStaffDirectory) ListStaff(ctx context.Context) ([]models.StaffMember, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]models.StaffMember)
	return list, args.Error(1)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }
