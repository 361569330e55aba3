// Package awareness manages the policies, helplines and safety tips shown
// in the public awareness hub.
package awareness

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"sentra/backend/internal/apperr"
	"sentra/backend/internal/config"
	"sentra/backend/internal/lifecycle"
	"sentra/backend/internal/models"

	"go.uber.org/zap"
)

type Store interface {
	ListAwareness(ctx context.Context) ([]models.Awareness, error)
	GetAwareness(ctx context.Context, id string) (*models.Awareness, error)
	CreateAwareness(ctx context.Context, item *models.Awareness) error
	SaveAwareness(ctx context.Context, item *models.Awareness) error
	DeleteAwareness(ctx context.Context, id string) error
}

// Input carries the editable fields. Nil pointers leave a field unchanged
// on update.
type Input struct {
	Title   *string
	Content *string
	Type    *models.AwarenessType
	Link    *string
}

type Service struct {
	store Store
	now   func() time.Time
	log   *zap.Logger
}

func NewService(store Store, log *zap.Logger) *Service {
	return &Service{store: store, now: time.Now, log: log}
}

// List is public.
func (s *Service) List(ctx context.Context) ([]models.Awareness, error) {
	return s.store.ListAwareness(ctx)
}

func (s *Service) Create(ctx context.Context, id lifecycle.Identity, in Input) (*models.Awareness, error) {
	if err := lifecycle.Authorize(id, lifecycle.ActionManageAwareness, nil); err != nil {
		return nil, err
	}
	item := &models.Awareness{Type: models.AwarenessTip}
	apply(item, in)
	if err := validate(item); err != nil {
		return nil, err
	}
	now := s.now()
	item.CreatedAt, item.UpdatedAt = now, now

	if err := s.store.CreateAwareness(ctx, item); err != nil {
		return nil, err
	}
	s.log.Info("awareness item created", zap.String("awareness_id", item.ID), zap.String("actor_id", id.UserID))
	return item, nil
}

func (s *Service) Update(ctx context.Context, id lifecycle.Identity, itemID string, in Input) (*models.Awareness, error) {
	if err := lifecycle.Authorize(id, lifecycle.ActionManageAwareness, nil); err != nil {
		return nil, err
	}
	item, err := s.store.GetAwareness(ctx, itemID)
	if err != nil {
		return nil, err
	}
	apply(item, in)
	if err := validate(item); err != nil {
		return nil, err
	}
	item.UpdatedAt = s.now()

	if err := s.store.SaveAwareness(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Delete(ctx context.Context, id lifecycle.Identity, itemID string) error {
	if err := lifecycle.Authorize(id, lifecycle.ActionManageAwareness, nil); err != nil {
		return err
	}
	if err := s.store.DeleteAwareness(ctx, itemID); err != nil {
		return err
	}
	s.log.Info("awareness item deleted", zap.String("awareness_id", itemID), zap.String("actor_id", id.UserID))
	return nil
}

func apply(item *models.Awareness, in Input) {
	if in.Title != nil {
		item.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		item.Content = strings.TrimSpace(*in.Content)
	}
	if in.Type != nil && *in.Type != "" {
		item.Type = *in.Type
	}
	if in.Link != nil {
		item.Link = strings.TrimSpace(*in.Link)
	}
}

func validate(item *models.Awareness) error {
	var fields []apperr.FieldError
	if n := utf8.RuneCountInString(item.Title); n == 0 || n > config.AwarenessTitleMaxLen {
		fields = append(fields, apperr.FieldError{Field: "title", Message: fmt.Sprintf("Title is required and must be at most %d characters", config.AwarenessTitleMaxLen)})
	}
	if item.Content == "" {
		fields = append(fields, apperr.FieldError{Field: "content", Message: "Content is required"})
	}
	if !item.Type.Valid() {
		fields = append(fields, apperr.FieldError{Field: "type", Message: "Type must be policy, helpline or tip"})
	}
	if len(fields) > 0 {
		return apperr.Validation("Validation failed", fields...)
	}
	return nil
}
