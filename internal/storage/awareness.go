package storage

import (
	"context"

	"sentra/backend/internal/apperr"
	"sentra/backend/internal/models"
)

const awarenessNotFound = "Awareness item not found"

func (s *Service) ListAwareness(ctx context.Context) ([]models.Awareness, error) {
	items := []models.Awareness{}
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, translate(err, "", "")
	}
	return items, nil
}

func (s *Service) GetAwareness(ctx context.Context, id string) (*models.Awareness, error) {
	var item models.Awareness
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, translate(err, awarenessNotFound, "")
	}
	return &item, nil
}

func (s *Service) CreateAwareness(ctx context.Context, item *models.Awareness) error {
	return translate(s.DB.WithContext(ctx).Create(item).Error, awarenessNotFound, "Awareness item already exists")
}

// SaveAwareness writes every column of an existing item.
func (s *Service) SaveAwareness(ctx context.Context, item *models.Awareness) error {
	res := s.DB.WithContext(ctx).
		Model(&models.Awareness{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"title":      item.Title,
			"content":    item.Content,
			"type":       item.Type,
			"link":       item.Link,
			"updated_at": item.UpdatedAt,
		})
	if res.Error != nil {
		return translate(res.Error, awarenessNotFound, "")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(awarenessNotFound)
	}
	return nil
}

func (s *Service) DeleteAwareness(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Awareness{})
	if res.Error != nil {
		return translate(res.Error, awarenessNotFound, "")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(awarenessNotFound)
	}
	return nil
}
