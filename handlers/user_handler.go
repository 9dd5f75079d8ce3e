package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/upb/budget-registry/middleware"
	"github.com/upb/budget-registry/models"
	"github.com/upb/budget-registry/services/user"
	"github.com/upb/budget-registry/utils"
	"go.uber.org/zap"
)

// RegisterRequest represents a request to register a new account
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role,omitempty"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	CreatedAt string          `json:"created_at"`
}

// AuthResponse bundles a user with a signed token
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// UserService defines the interface for user account operations
type UserService interface {
	Register(ctx context.Context, input user.RegisterInput) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, caller models.Caller, limit, offset int) ([]*models.User, error)
}

// UserHandler handles user account HTTP requests
type UserHandler struct {
	userService UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// HandleRegister handles POST /api/v1/users/register
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		h.logger.Warn("request validation failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleValidationError(w, err, h.logger)
		return
	}

	u, token, err := h.userService.Register(ctx, user.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.UserRole(req.Role),
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("user registered",
		zap.String("request_id", requestID),
		zap.String("user_id", u.ID.String()))

	_ = utils.WriteCreated(w, AuthResponse{
		User:  userToResponse(u),
		Token: token,
	})
}

// HandleLogin handles POST /api/v1/users/login
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	u, token, err := h.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("user logged in",
		zap.String("request_id", requestID),
		zap.String("user_id", u.ID.String()))

	_ = utils.WriteOK(w, AuthResponse{
		User:  userToResponse(u),
		Token: token,
	})
}

// HandleMe handles GET /api/v1/users/me
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller := middleware.GetCallerFromContext(ctx)
	if caller.ID == uuid.Nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	u, err := h.userService.GetByID(ctx, caller.ID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, userToResponse(u))
}

// HandleListUsers handles GET /api/v1/users
func (h *UserHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	caller := middleware.GetCallerFromContext(ctx)
	if caller.ID == uuid.Nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	limit := parseIntParam(r, "limit", 50)
	offset := parseIntParam(r, "offset", 0)

	users, err := h.userService.List(ctx, caller, limit, offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	responses := make([]UserResponse, len(users))
	for i, u := range users {
		responses[i] = userToResponse(u)
	}

	h.logger.Debug("listed users",
		zap.String("request_id", requestID),
		zap.Int("count", len(responses)))

	_ = utils.WriteOK(w, responses)
}

// parseIntParam reads an integer query parameter, falling back to a default
func parseIntParam(r *http.Request, name string, defaultValue int) int {
	valueStr := r.URL.Query().Get(name)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// userToResponse converts a User model to a UserResponse
func userToResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
