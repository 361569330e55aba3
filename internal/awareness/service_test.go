package awareness_test

import (
	"context"
	"testing"

	"sentra/backend/internal/apperr"
	"sentra/backend/internal/awareness"
	"sentra/backend/internal/lifecycle"
	"sentra/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListAwareness(ctx context.Context) ([]models.Awareness, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]models.Awareness)
	return items, args.Error(1)
}

func (m *MockStore) GetAwareness(ctx context.Context, id string) (*models.Awareness, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(*models.Awareness)
	return item, args.Error(1)
}

func (m *MockStore) CreateAwareness(ctx context.Context, item *models.Awareness) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockStore) SaveAwareness(ctx context.Context, item *models.Awareness) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockStore) DeleteAwareness(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

var (
	admin   = lifecycle.Identity{UserID: "admin-1", Role: models.RoleAdmin}
	student = lifecycle.Identity{UserID: "student-1", Role: models.RoleStudent}
	staff   = lifecycle.Identity{UserID: "staff-1", Role: models.RoleStaff}
)

func ptr[T any](v T) *T { return &v }

func TestCreate_DefaultsToTip(t *testing.T) {
	store := new(MockStore)
	svc := awareness.NewService(store, zap.NewNop())
	store.On("CreateAwareness", mock.Anything, mock.AnythingOfType("*models.Awareness")).Return(nil)

	item, err := svc.Create(context.Background(), admin, awareness.Input{
		Title:   ptr(" Walk in pairs after dark "),
		Content: ptr("Use the campus escort service between 10pm and 6am."),
	})

	require.NoError(t, err)
	assert.Equal(t, models.AwarenessTip, item.Type)
	assert.Equal(t, "Walk in pairs after dark", item.Title)
	assert.False(t, item.CreatedAt.IsZero())
	store.AssertExpectations(t)
}

func TestCreate_RequiresAdmin(t *testing.T) {
	store := new(MockStore)
	svc := awareness.NewService(store, zap.NewNop())

	for _, id := range []lifecycle.Identity{student, staff} {
		_, err := svc.Create(context.Background(), id, awareness.Input{Title: ptr("t"), Content: ptr("c")})
		assert.True(t, apperr.Is(err, apperr.KindAuthorization))
		assert.True(t, apperr.Is(svc.Delete(context.Background(), id, "a-1"), apperr.KindAuthorization))
	}
	store.AssertNotCalled(t, "CreateAwareness", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "DeleteAwareness", mock.Anything, mock.Anything)
}

func TestCreate_Validation(t *testing.T) {
	svc := awareness.NewService(new(MockStore), zap.NewNop())

	_, err := svc.Create(context.Background(), admin, awareness.Input{
		Title: ptr("   "),
		Type:  ptr(models.AwarenessType("rumour")),
	})

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Len(t, appErr.Fields, 3)
}

func TestUpdate_PartialFields(t *testing.T) {
	store := new(MockStore)
	svc := awareness.NewService(store, zap.NewNop())
	existing := &models.Awareness{ID: "a-1", Title: "Counselling", Content: "Room 12", Type: models.AwarenessHelpline, Link: "https://campus.edu/help"}
	store.On("GetAwareness", mock.Anything, "a-1").Return(existing, nil)
	store.On("SaveAwareness", mock.Anything, existing).Return(nil)

	item, err := svc.Update(context.Background(), admin, "a-1", awareness.Input{Content: ptr("Room 14, open 9-5")})

	require.NoError(t, err)
	assert.Equal(t, "Counselling", item.Title)
	assert.Equal(t, "Room 14, open 9-5", item.Content)
	assert.Equal(t, models.AwarenessHelpline, item.Type)
	assert.Equal(t, "https://campus.edu/help", item.Link)
	store.AssertExpectations(t)
}

func TestUpdate_NotFound(t *testing.T) {
	store := new(MockStore)
	svc := awareness.NewService(store, zap.NewNop())
	store.On("GetAwareness", mock.Anything, "missing").Return(nil, apperr.NotFound("Awareness item not found"))

	_, err := svc.Update(context.Background(), admin, "missing", awareness.Input{Title: ptr("x")})

	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListIsPublic(t *testing.T) {
	store := new(MockStore)
	svc := awareness.NewService(store, zap.NewNop())
	store.On("ListAwareness", mock.Anything).Return([]models.Awareness{{ID: "a-1"}}, nil)

	items, err := svc.List(context.Background())

	require.NoError(t, err)
	assert.Len(t, items, 1)
}
