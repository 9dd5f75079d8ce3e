package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/upb/budget-registry/middleware"
	"github.com/upb/budget-registry/models"
	"github.com/upb/budget-registry/utils"
	"go.uber.org/zap"
)

// ReportService defines the interface for report aggregation operations
type ReportService interface {
	SummaryByYear(ctx context.Context, year *int) ([]*models.YearSummary, error)
	SummaryBySector(ctx context.Context, year *int) ([]*models.SectorSummary, error)
}

// ReportHandler handles report aggregation HTTP requests
type ReportHandler struct {
	reportService ReportService
	logger        *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// HandleYearSummary handles GET /api/v1/reports/summary
func (h *ReportHandler) HandleYearSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	year, ok := parseYearParam(w, r)
	if !ok {
		return
	}

	summaries, err := h.reportService.SummaryByYear(ctx, year)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Debug("year summary served",
		zap.String("request_id", requestID),
		zap.Int("groups", len(summaries)))

	_ = utils.WriteOK(w, summaries)
}

// HandleSectorSummary handles GET /api/v1/reports/sectors
func (h *ReportHandler) HandleSectorSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	year, ok := parseYearParam(w, r)
	if !ok {
		return
	}

	summaries, err := h.reportService.SummaryBySector(ctx, year)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Debug("sector summary served",
		zap.String("request_id", requestID),
		zap.Int("groups", len(summaries)))

	_ = utils.WriteOK(w, summaries)
}

// parseYearParam reads the optional year query parameter. Returns false after
// writing a 400 response when the parameter is present but not an integer.
func parseYearParam(w http.ResponseWriter, r *http.Request) (*int, bool) {
	yearStr := r.URL.Query().Get("year")
	if yearStr == "" {
		return nil, true
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid year format", nil)
		return nil, false
	}
	return &year, true
}
