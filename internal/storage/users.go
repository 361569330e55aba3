package storage

import (
	"context"
	"strings"

	"sentra/backend/internal/models"
)

// CreateUser inserts a new account. Emails are stored lower-cased; a taken
// email is a conflict.
func (s *Service) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	err := s.DB.WithContext(ctx).Create(user).Error
	return translate(err, "User not found", "User already exists")
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, translate(err, "User not found", "")
	}
	return &user, nil
}

func (s *Service) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err, "User not found", "")
	}
	return &user, nil
}

// ListStaff returns every staff account sorted by name.
func (s *Service) ListStaff(ctx context.Context) ([]models.StaffMember, error) {
	staff := []models.StaffMember{}
	err := s.DB.WithContext(ctx).
		Model(&models.User{}).
		Select("id", "name", "email").
		Where("role = ?", models.RoleStaff).
		Order("name ASC").
		Scan(&staff).Error
	if err != nil {
		return nil, translate(err, "", "")
	}
	return staff, nil
}
