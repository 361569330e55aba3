package storage

import (
	"context"
	"errors"
	"time"

	"sentra/backend/internal/apperr"
	"sentra/backend/internal/lifecycle"
	"sentra/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// IncidentMutation changes a locked incident and returns the ledger entry
// recording the change. Returning an error aborts the transaction.
type IncidentMutation func(inc *models.Incident) (models.HistoryEntry, error)

type Storage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListStaff(ctx context.Context) ([]models.StaffMember, error)

	CreateIncident(ctx context.Context, inc *models.Incident) error
	GetIncident(ctx context.Context, id string) (*models.Incident, error)
	ListIncidents(ctx context.Context, scope lifecycle.Scope) ([]models.Incident, error)
	UpdateIncident(ctx context.Context, id string, mutate IncidentMutation) (*models.Incident, error)
	IncidentStats(ctx context.Context) (*models.IncidentStats, error)

	ListAwareness(ctx context.Context) ([]models.Awareness, error)
	GetAwareness(ctx context.Context, id string) (*models.Awareness, error)
	CreateAwareness(ctx context.Context, item *models.Awareness) error
	SaveAwareness(ctx context.Context, item *models.Awareness) error
	DeleteAwareness(ctx context.Context, id string) error

	PublishIncidentEvent(ctx context.Context, ev models.IncidentEvent) error
	SubscribeIncidentEvents(ctx context.Context) *redis.PubSub

	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)

	Ping(ctx context.Context) error
}

type Service struct {
	DB            *gorm.DB
	Redis         *redis.Client
	EventsChannel string
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client, eventsChannel string) *Service {
	return &Service{
		DB:            db,
		Redis:         rdb,
		EventsChannel: eventsChannel,
	}
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Incident{},
		&models.HistoryEntry{},
		&models.Awareness{},
	)
}

// Ping checks both backends. The database is checked first.
func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return apperr.Unexpected(err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperr.Unexpected(err)
	}
	if err := s.Redis.Ping(ctx).Err(); err != nil {
		return apperr.Unexpected(err)
	}
	return nil
}

// translate maps gorm errors onto the application taxonomy. The database is
// opened with TranslateError so unique violations arrive as
// gorm.ErrDuplicatedKey.
func translate(err error, notFound, conflict string) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflict(conflict, err)
	}
	return apperr.Unexpected(err)
}
