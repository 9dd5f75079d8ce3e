package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/upb/budget-registry/models"
	"github.com/upb/budget-registry/repositories"
	"go.uber.org/zap"
)

// insertTimeout bounds the detached insert so a slow store cannot leak goroutines
const insertTimeout = 5 * time.Second

// Service records audit trail entries for mutations. Writes are fire and
// forget: a failed audit insert is logged but never fails the business
// operation that triggered it.
type Service struct {
	auditRepo repositories.AuditRepository
	logger    *zap.Logger
}

// NewService creates a new audit Service instance
func NewService(auditRepo repositories.AuditRepository, logger *zap.Logger) *Service {
	return &Service{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// Record persists an audit entry asynchronously. The entry is detached from
// the caller's context so request cancellation does not drop the trail.
func (s *Service) Record(ctx context.Context, log *models.AuditLog) {
	go func() {
		insertCtx, cancel := context.WithTimeout(context.Background(), insertTimeout)
		defer cancel()

		if err := s.auditRepo.Insert(insertCtx, log); err != nil {
			s.logger.Error("failed to record audit entry",
				zap.Error(err),
				zap.String("action", string(log.Action)),
				zap.String("actor_id", log.ActorID.String()))
		}
	}()
}

// RecordSync persists an audit entry synchronously, for callers that need
// the entry durably written before returning (e.g. transactional flows).
func (s *Service) RecordSync(ctx context.Context, log *models.AuditLog) error {
	return s.auditRepo.Insert(ctx, log)
}

// ListByResource returns the audit trail for a resource
func (s *Service) ListByResource(ctx context.Context, resourceID uuid.UUID) ([]*models.AuditLog, error) {
	return s.auditRepo.ListByResource(ctx, resourceID)
}
