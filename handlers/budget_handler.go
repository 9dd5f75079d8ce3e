package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/upb/budget-registry/middleware"
	"github.com/upb/budget-registry/models"
	"github.com/upb/budget-registry/services/budget"
	"github.com/upb/budget-registry/utils"
	"go.uber.org/zap"
)

// CreateBudgetRequest represents a request to create a budget record
type CreateBudgetRequest struct {
	Department      string   `json:"department" validate:"required"`
	Sector          string   `json:"sector" validate:"required"`
	Year            int      `json:"year" validate:"required,gte=1900,lte=2200"`
	AllocatedAmount *float64 `json:"allocated_amount" validate:"required,gte=0"`
	UtilizedAmount  *float64 `json:"utilized_amount,omitempty" validate:"omitempty,gte=0"`
	Notes           string   `json:"notes,omitempty"`
}

// UpdateBudgetRequest represents a request to update a budget record.
// Omitted string fields and year leave the stored value unchanged; amount
// fields are applied whenever present, including an explicit zero.
type UpdateBudgetRequest struct {
	Department      string   `json:"department,omitempty"`
	Sector          string   `json:"sector,omitempty"`
	Year            int      `json:"year,omitempty" validate:"omitempty,gte=1900,lte=2200"`
	AllocatedAmount *float64 `json:"allocated_amount,omitempty"`
	UtilizedAmount  *float64 `json:"utilized_amount,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

// BudgetResponse represents a budget record in API responses
type BudgetResponse struct {
	ID              uuid.UUID `json:"id"`
	Department      string    `json:"department"`
	Sector          string    `json:"sector"`
	Year            int       `json:"year"`
	AllocatedAmount float64   `json:"allocated_amount"`
	UtilizedAmount  float64   `json:"utilized_amount"`
	Notes           string    `json:"notes"`
	CreatedAt       string    `json:"created_at"`
	UpdatedAt       string    `json:"updated_at"`
}

// BudgetService defines the interface for budget record operations
type BudgetService interface {
	Create(ctx context.Context, caller models.Caller, input budget.CreateInput) (*models.BudgetRecord, error)
	List(ctx context.Context, filter models.BudgetFilter) ([]*models.BudgetRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.BudgetRecord, error)
	Update(ctx context.Context, caller models.Caller, id uuid.UUID, input budget.UpdateInput) (*models.BudgetRecord, error)
	Delete(ctx context.Context, caller models.Caller, id uuid.UUID) error
}

// BudgetHandler handles budget record HTTP requests
type BudgetHandler struct {
	budgetService BudgetService
	logger        *zap.Logger
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService BudgetService, logger *zap.Logger) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
		logger:        logger,
	}
}

// HandleCreateBudget handles POST /api/v1/budgets
func (h *BudgetHandler) HandleCreateBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	caller := middleware.GetCallerFromContext(ctx)
	if caller.ID == uuid.Nil {
		h.logger.Error("missing caller in context", zap.String("request_id", requestID))
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req CreateBudgetRequest
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

	record, err := h.budgetService.Create(ctx, caller, budget.CreateInput{
		Department:      req.Department,
		Sector:          req.Sector,
		Year:            req.Year,
		AllocatedAmount: req.AllocatedAmount,
		UtilizedAmount:  req.UtilizedAmount,
		Notes:           req.Notes,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("budget record created",
		zap.String("request_id", requestID),
		zap.String("budget_id", record.ID.String()))

	_ = utils.WriteCreated(w, budgetToResponse(record))
}

// HandleListBudgets handles GET /api/v1/budgets
func (h *BudgetHandler) HandleListBudgets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var filter models.BudgetFilter
	if department := r.URL.Query().Get("department"); department != "" {
		filter.Department = &department
	}
	if sector := r.URL.Query().Get("sector"); sector != "" {
		filter.Sector = &sector
	}
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid year format", nil)
			return
		}
		filter.Year = &year
	}

	records, err := h.budgetService.List(ctx, filter)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	responses := make([]BudgetResponse, len(records))
	for i, record := range records {
		responses[i] = budgetToResponse(record)
	}

	h.logger.Debug("listed budget records",
		zap.String("request_id", requestID),
		zap.Int("count", len(responses)))

	_ = utils.WriteOK(w, responses)
}

// HandleGetBudget handles GET /api/v1/budgets/{id}
func (h *BudgetHandler) HandleGetBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid budget ID format", nil)
		return
	}

	record, err := h.budgetService.GetByID(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, budgetToResponse(record))
}

// HandleUpdateBudget handles PUT /api/v1/budgets/{id}
func (h *BudgetHandler) HandleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	caller := middleware.GetCallerFromContext(ctx)
	if caller.ID == uuid.Nil {
		h.logger.Error("missing caller in context", zap.String("request_id", requestID))
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid budget ID format", nil)
		return
	}

	var req UpdateBudgetRequest
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

	record, err := h.budgetService.Update(ctx, caller, id, budget.UpdateInput{
		Department:      req.Department,
		Sector:          req.Sector,
		Year:            req.Year,
		AllocatedAmount: req.AllocatedAmount,
		UtilizedAmount:  req.UtilizedAmount,
		Notes:           req.Notes,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("budget record updated",
		zap.String("request_id", requestID),
		zap.String("budget_id", record.ID.String()))

	_ = utils.WriteOK(w, budgetToResponse(record))
}

// HandleDeleteBudget handles DELETE /api/v1/budgets/{id}
func (h *BudgetHandler) HandleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	caller := middleware.GetCallerFromContext(ctx)
	if caller.ID == uuid.Nil {
		h.logger.Error("missing caller in context", zap.String("request_id", requestID))
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid budget ID format", nil)
		return
	}

	if err := h.budgetService.Delete(ctx, caller, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("budget record deleted",
		zap.String("request_id", requestID),
		zap.String("budget_id", id.String()))

	utils.WriteNoContent(w)
}

// budgetToResponse converts a BudgetRecord model to a BudgetResponse
func budgetToResponse(b *models.BudgetRecord) BudgetResponse {
	return BudgetResponse{
		ID:              b.ID,
		Department:      b.Department,
		Sector:          b.Sector,
		Year:            b.Year,
		AllocatedAmount: b.AllocatedAmount,
		UtilizedAmount:  b.UtilizedAmount,
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:       b.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
