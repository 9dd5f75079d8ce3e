package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/upb/budget-registry/models"
	"github.com/upb/budget-registry/repositories"
	"github.com/upb/budget-registry/services"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput holds the fields for registering a new user
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     models.UserRole
}

// TokenIssuer issues signed tokens for authenticated users
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

// Service handles user registration, login and lookup
type Service struct {
	userRepo repositories.UserRepository
	tokens   TokenIssuer
	logger   *zap.Logger
}

// NewService creates a new user Service instance
func NewService(userRepo repositories.UserRepository, tokens TokenIssuer, logger *zap.Logger) *Service {
	return &Service{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Register creates a new user account and returns the user with a signed token.
// An unrecognized role falls back to member rather than failing registration.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, "", services.NewDomainError(services.ErrorTypeValidation, "name is required", nil)
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, "", services.NewDomainError(services.ErrorTypeValidation, "email is required", nil)
	}
	if len(input.Password) < 6 {
		return nil, "", services.NewDomainError(services.ErrorTypeValidation, "password must be at least 6 characters", nil)
	}

	role := input.Role
	if !models.ValidRole(role) {
		role = models.RoleMember
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", services.WrapInternal("failed to hash password", err)
	}

	u := models.NewUser(strings.TrimSpace(input.Name), strings.ToLower(strings.TrimSpace(input.Email)), string(hash), role)

	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, "", services.ErrDuplicateEmail
		}
		return nil, "", services.WrapInternal("failed to create user", err)
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, "", services.WrapInternal("failed to issue token", err)
	}

	s.logger.Info("user registered",
		zap.String("id", u.ID.String()),
		zap.String("role", string(u.Role)))

	return u, token, nil
}

// Login verifies credentials and returns the user with a signed token
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	u, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, "", services.ErrInvalidCredentials
		}
		return nil, "", services.WrapInternal("failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", services.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, "", services.WrapInternal("failed to issue token", err)
	}

	s.logger.Info("user logged in", zap.String("id", u.ID.String()))
	return u, token, nil
}

// GetByID returns a user profile
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrUserNotFound
		}
		return nil, services.WrapInternal("failed to get user", err)
	}
	return u, nil
}

// List returns all users. Admin-only.
func (s *Service) List(ctx context.Context, caller models.Caller, limit, offset int) ([]*models.User, error) {
	if !caller.IsAdmin() {
		return nil, services.ErrForbidden
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, services.WrapInternal("failed to list users", err)
	}
	return users, nil
}
