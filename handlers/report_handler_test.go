package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/budget-registry/models"
	"github.com/upb/budget-registry/services"
	"go.uber.org/zap"
)

// MockReportService is a mock implementation of ReportService
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) SummaryByYear(ctx context.Context, year *int) ([]*models.YearSummary, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.YearSummary), args.Error(1)
}

func (m *MockReportService) SummaryBySector(ctx context.Context, year *int) ([]*models.SectorSummary, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SectorSummary), args.Error(1)
}

func TestHandleYearSummary(t *testing.T) {
	logger := zap.NewNop()

	t.Run("returns summaries without year filter", func(t *testing.T) {
		mockSvc := new(MockReportService)
		handler := NewReportHandler(mockSvc, logger)

		summaries := []*models.YearSummary{
			{Year: 2025, TotalAllocated: 150000, TotalUtilized: 35000, Count: 2},
			{Year: 2024, TotalAllocated: 50000, TotalUtilized: 10000, Count: 1},
		}
		mockSvc.On("SummaryByYear", mock.Anything, (*int)(nil)).Return(summaries, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/summary", nil)
		w := httptest.NewRecorder()

		handler.HandleYearSummary(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		data := response["data"].([]interface{})
		require.Len(t, data, 2)
		first := data[0].(map[string]interface{})
		assert.Equal(t, 2025.0, first["year"])
		assert.Equal(t, 150000.0, first["total_allocated"])
	})

	t.Run("passes year filter through", func(t *testing.T) {
		mockSvc := new(MockReportService)
		handler := NewReportHandler(mockSvc, logger)

		mockSvc.On("SummaryByYear", mock.Anything, mock.MatchedBy(func(y *int) bool {
			return y != nil && *y == 2025
		})).Return([]*models.YearSummary{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/summary?year=2025", nil)
		w := httptest.NewRecorder()

		handler.HandleYearSummary(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("rejects non-numeric year", func(t *testing.T) {
		mockSvc := new(MockReportService)
		handler := NewReportHandler(mockSvc, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/summary?year=abc", nil)
		w := httptest.NewRecorder()

		handler.HandleYearSummary(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockSvc.AssertNotCalled(t, "SummaryByYear")
	})

	t.Run("maps store failure to internal error", func(t *testing.T) {
		mockSvc := new(MockReportService)
		handler := NewReportHandler(mockSvc, logger)

		mockSvc.On("SummaryByYear", mock.Anything, (*int)(nil)).
			Return(nil, services.WrapInternal("failed to compute year summary", assert.AnError))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/summary", nil)
		w := httptest.NewRecorder()

		handler.HandleYearSummary(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHandleSectorSummary(t *testing.T) {
	logger := zap.NewNop()

	t.Run("returns sector groups", func(t *testing.T) {
		mockSvc := new(MockReportService)
		handler := NewReportHandler(mockSvc, logger)

		summaries := []*models.SectorSummary{
			{Sector: "Corporate", Year: 2025, TotalAllocated: 50000, TotalUtilized: 10000, Count: 1},
			{Sector: "Technology", Year: 2025, TotalAllocated: 100000, TotalUtilized: 25000, Count: 1},
		}
		mockSvc.On("SummaryBySector", mock.Anything, (*int)(nil)).Return(summaries, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/sectors", nil)
		w := httptest.NewRecorder()

		handler.HandleSectorSummary(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		data := response["data"].([]interface{})
		require.Len(t, data, 2)
		first := data[0].(map[string]interface{})
		assert.Equal(t, "Corporate", first["sector"])
	})
}
