package storage

import (
	"context"

	"sentra/backend/internal/apperr"
	"sentra/backend/internal/lifecycle"
	"sentra/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const incidentNotFound = "Incident not found"

// userSummary limits preloaded reporter and assignee rows to the columns
// models.User serializes.
func userSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email", "role", "created_at", "updated_at")
}

func historyOrder(db *gorm.DB) *gorm.DB {
	return db.Order("changed_at ASC, id ASC")
}

// CreateIncident inserts the incident together with its initial ledger
// entries. A duplicate reference code is reported as a conflict so the
// caller can retry with a fresh code.
func (s *Service) CreateIncident(ctx context.Context, inc *models.Incident) error {
	err := s.DB.WithContext(ctx).
		Omit("Reporter", "Assignee").
		Create(inc).Error
	return translate(err, incidentNotFound, "Reference code already in use")
}

// GetIncident loads one incident with reporter, assignee and full ledger.
func (s *Service) GetIncident(ctx context.Context, id string) (*models.Incident, error) {
	var inc models.Incident
	err := s.DB.WithContext(ctx).
		Preload("Reporter", userSummary).
		Preload("Assignee", userSummary).
		Preload("History", historyOrder).
		Where("id = ?", id).
		First(&inc).Error
	if err != nil {
		return nil, translate(err, incidentNotFound, "")
	}
	return &inc, nil
}

// ListIncidents runs scope against the database, newest first.
func (s *Service) ListIncidents(ctx context.Context, scope lifecycle.Scope) ([]models.Incident, error) {
	q := s.DB.WithContext(ctx).
		Preload("Reporter", userSummary).
		Preload("Assignee", userSummary)
	if scope.WithHistory {
		q = q.Preload("History", historyOrder)
	}
	q = applyScope(q, scope)

	incidents := []models.Incident{}
	if err := q.Order("created_at DESC").Find(&incidents).Error; err != nil {
		return nil, translate(err, "", "")
	}
	return incidents, nil
}

func applyScope(q *gorm.DB, scope lifecycle.Scope) *gorm.DB {
	if scope.Filters.Status != "" {
		q = q.Where("status = ?", scope.Filters.Status)
	}
	if scope.Filters.Category != "" {
		q = q.Where("category = ?", scope.Filters.Category)
	}
	if scope.Filters.Priority != "" {
		q = q.Where("priority = ?", scope.Filters.Priority)
	}
	if scope.AssigneeID != "" {
		q = q.Where("assignee_id = ?", scope.AssigneeID)
	}
	if scope.Owner != "" {
		q = q.Where("(reporter_id = ? OR is_anonymous = ?)", scope.Owner, true)
	}
	return q
}

// UpdateIncident locks the incident row, applies mutate and writes the
// changed columns plus the returned ledger entry in one transaction. The
// committed incident is reloaded and returned.
func (s *Service) UpdateIncident(ctx context.Context, id string, mutate IncidentMutation) (*models.Incident, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inc models.Incident
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&inc).Error
		if err != nil {
			return err
		}

		entry, err := mutate(&inc)
		if err != nil {
			return err
		}
		if entry.IncidentID != inc.ID {
			return apperr.Unexpected(gorm.ErrInvalidData)
		}

		err = tx.Model(&models.Incident{}).
			Where("id = ?", inc.ID).
			Updates(map[string]any{
				"status":      inc.Status,
				"assignee_id": inc.AssigneeID,
				"updated_at":  inc.UpdatedAt,
			}).Error
		if err != nil {
			return err
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, translate(err, incidentNotFound, "")
	}
	return s.GetIncident(ctx, id)
}

type countRow struct {
	Label string
	Total int64
}

// IncidentStats counts incidents overall, per status and per priority.
// Every known status and priority is present, zero when unused.
func (s *Service) IncidentStats(ctx context.Context) (*models.IncidentStats, error) {
	db := s.DB.WithContext(ctx)
	stats := &models.IncidentStats{
		ByStatus:   make(map[models.Status]int64, len(models.Statuses)),
		ByPriority: make(map[models.Priority]int64, len(models.Priorities)),
	}
	for _, st := range models.Statuses {
		stats.ByStatus[st] = 0
	}
	for _, p := range models.Priorities {
		stats.ByPriority[p] = 0
	}

	if err := db.Model(&models.Incident{}).Count(&stats.Total).Error; err != nil {
		return nil, translate(err, "", "")
	}
	if err := db.Model(&models.Incident{}).Where("assignee_id IS NULL").Count(&stats.Unassigned).Error; err != nil {
		return nil, translate(err, "", "")
	}

	var rows []countRow
	if err := db.Model(&models.Incident{}).Select("status AS label, COUNT(*) AS total").Group("status").Scan(&rows).Error; err != nil {
		return nil, translate(err, "", "")
	}
	for _, r := range rows {
		stats.ByStatus[models.Status(r.Label)] = r.Total
	}

	rows = rows[:0]
	if err := db.Model(&models.Incident{}).Select("priority AS label, COUNT(*) AS total").Group("priority").Scan(&rows).Error; err != nil {
		return nil, translate(err, "", "")
	}
	for _, r := range rows {
		stats.ByPriority[models.Priority(r.Label)] = r.Total
	}
	return stats, nil
}
