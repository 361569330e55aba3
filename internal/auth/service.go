// Package auth handles registration, credential checks and the access
// tokens that carry a verified identity to the rest of the service.
package auth

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

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New()

// Store is the persistence the auth service needs.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

type Service struct {
	store  Store
	tokens *Tokens
	cost   int
	log    *zap.Logger
}

func NewService(store Store, tokens *Tokens, bcryptCost int, log *zap.Logger) *Service {
	return &Service{store: store, tokens: tokens, cost: bcryptCost, log: log}
}

// Register creates an account. Role is optional and defaults to student.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Role == "" {
		in.Role = models.RoleStudent
	}
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password, s.cost)
	if err != nil {
		return nil, apperr.Unexpected(fmt.Errorf("hash password: %w", err))
	}
	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

func validateRegistration(in RegisterInput) error {
	var fields []apperr.FieldError
	if n := utf8.RuneCountInString(in.Name); n < config.NameMinLen || n > config.NameMaxLen {
		fields = append(fields, apperr.FieldError{Field: "name", Message: fmt.Sprintf("Name must be between %d and %d characters", config.NameMinLen, config.NameMaxLen)})
	}
	if err := validate.Var(in.Email, "required,email"); err != nil {
		fields = append(fields, apperr.FieldError{Field: "email", Message: "Valid email is required"})
	}
	if utf8.RuneCountInString(in.Password) < config.PasswordMinLen {
		fields = append(fields, apperr.FieldError{Field: "password", Message: fmt.Sprintf("Password must be at least %d characters", config.PasswordMinLen)})
	}
	if !in.Role.Valid() {
		fields = append(fields, apperr.FieldError{Field: "role", Message: "Invalid role"})
	}
	if len(fields) > 0 {
		return apperr.Validation("Validation failed", fields...)
	}
	return nil
}

// Login checks credentials and issues a token. Unknown email and wrong
// password produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Unauthenticated("Invalid email or password")
	}
	if err != nil {
		return nil, err
	}

	ok, err := CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, apperr.Unexpected(fmt.Errorf("check password for %s: %w", user.ID, err))
	}
	if !ok {
		return nil, apperr.Unauthenticated("Invalid email or password")
	}

	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperr.Unexpected(err)
	}
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}

// Authenticate turns a bearer token into claims, rejecting revoked tokens.
func (s *Service) Authenticate(ctx context.Context, raw string) (*Claims, error) {
	if raw == "" {
		return nil, apperr.Unauthenticated("Authorization token required")
	}
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, apperr.Unauthenticated("Invalid or expired token")
	}
	revoked, err := s.store.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperr.Unauthenticated("Token has been revoked")
	}
	return claims, nil
}

func (s *Service) Me(ctx context.Context, id lifecycle.Identity) (*models.User, error) {
	return s.store.GetUserByID(ctx, id.UserID)
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	return s.store.RevokeToken(ctx, claims.ID, claims.Remaining(s.tokens.now()))
}
