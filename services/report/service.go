package report

import (
	"context"

	"github.com/upb/budget-registry/models"
	"github.com/upb/budget-registry/repositories"
	"github.com/upb/budget-registry/services"
	"go.uber.org/zap"
)

// Service derives grouped financial summaries from the budget record set.
// All operations are read-only scans over the current store snapshot.
type Service struct {
	budgetRepo repositories.BudgetRepository
	logger     *zap.Logger
}

// NewService creates a new report Service instance
func NewService(budgetRepo repositories.BudgetRepository, logger *zap.Logger) *Service {
	return &Service{
		budgetRepo: budgetRepo,
		logger:     logger,
	}
}

// SummaryByYear groups matching records by year and computes total allocated,
// total utilized and record count per group, ordered by year descending.
// A nil year leaves the scan unfiltered.
func (s *Service) SummaryByYear(ctx context.Context, year *int) ([]*models.YearSummary, error) {
	summaries, err := s.budgetRepo.SummaryByYear(ctx, year)
	if err != nil {
		return nil, services.WrapInternal("failed to compute year summary", err)
	}

	s.logger.Debug("year summary computed", zap.Int("groups", len(summaries)))
	return summaries, nil
}

// SummaryBySector groups matching records by (sector, year) with the same
// three measures, ordered by year descending then sector ascending.
func (s *Service) SummaryBySector(ctx context.Context, year *int) ([]*models.SectorSummary, error) {
	summaries, err := s.budgetRepo.SummaryBySector(ctx, year)
	if err != nil {
		return nil, services.WrapInternal("failed to compute sector summary", err)
	}

	s.logger.Debug("sector summary computed", zap.Int("groups", len(summaries)))
	return summaries, nil
}
