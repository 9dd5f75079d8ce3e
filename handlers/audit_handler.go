package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/upb/budget-registry/middleware"
	"github.com/upb/budget-registry/models"
	"github.com/upb/budget-registry/utils"
	"go.uber.org/zap"
)

// AuditLogResponse represents an audit trail entry in API responses
type AuditLogResponse struct {
	ID           uuid.UUID          `json:"id"`
	ActorID      uuid.UUID          `json:"actor_id"`
	ActorRole    models.UserRole    `json:"actor_role"`
	Action       models.AuditAction `json:"action"`
	ResourceType string             `json:"resource_type"`
	ResourceID   *uuid.UUID         `json:"resource_id,omitempty"`
	Details      json.RawMessage    `json:"details,omitempty"`
	Timestamp    string             `json:"timestamp"`
}

// AuditService defines the interface for reading the audit trail
type AuditService interface {
	ListByResource(ctx context.Context, resourceID uuid.UUID) ([]*models.AuditLog, error)
}

// AuditHandler serves the audit trail of budget records
type AuditHandler struct {
	auditService AuditService
	logger       *zap.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(auditService AuditService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// HandleListBudgetAudit handles GET /api/v1/budgets/{id}/audit
func (h *AuditHandler) HandleListBudgetAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid budget ID format", nil)
		return
	}

	logs, err := h.auditService.ListByResource(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	responses := make([]AuditLogResponse, len(logs))
	for i, log := range logs {
		responses[i] = auditToResponse(log)
	}

	h.logger.Debug("listed audit trail",
		zap.String("request_id", requestID),
		zap.String("resource_id", id.String()),
		zap.Int("count", len(responses)))

	_ = utils.WriteOK(w, responses)
}

// auditToResponse converts an AuditLog model to an AuditLogResponse
func auditToResponse(l *models.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:           l.ID,
		ActorID:      l.ActorID,
		ActorRole:    l.ActorRole,
		Action:       l.Action,
		ResourceType: l.ResourceType,
		ResourceID:   l.ResourceID,
		Details:      l.Details,
		Timestamp:    l.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
	}
}
