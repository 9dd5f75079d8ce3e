package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/budget-registry/middleware"
	"github.com/upb/budget-registry/models"
	"github.com/upb/budget-registry/services"
	"github.com/upb/budget-registry/services/budget"
	"go.uber.org/zap"
)

// MockBudgetService is a mock implementation of BudgetService
type MockBudgetService struct {
	mock.Mock
}

func (m *MockBudgetService) Create(ctx context.Context, caller models.Caller, input budget.CreateInput) (*models.BudgetRecord, error) {
	args := m.Called(ctx, caller, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BudgetRecord), args.Error(1)
}

func (m *MockBudgetService) List(ctx context.Context, filter models.BudgetFilter) ([]*models.BudgetRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BudgetRecord), args.Error(1)
}

func (m *MockBudgetService) GetByID(ctx context.Context, id uuid.UUID) (*models.BudgetRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BudgetRecord), args.Error(1)
}

func (m *MockBudgetService) Update(ctx context.Context, caller models.Caller, id uuid.UUID, input budget.UpdateInput) (*models.BudgetRecord, error) {
	args := m.Called(ctx, caller, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BudgetRecord), args.Error(1)
}

func (m *MockBudgetService) Delete(ctx context.Context, caller models.Caller, id uuid.UUID) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

func withTestCaller(req *http.Request, role models.UserRole) *http.Request {
	caller := models.Caller{ID: uuid.New(), Role: role}
	return req.WithContext(middleware.WithCaller(req.Context(), caller))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandleCreateBudget(t *testing.T) {
	logger := zap.NewNop()

	t.Run("creates budget record", func(t *testing.T) {
		mockSvc := new(MockBudgetService)
		handler := NewBudgetHandler(mockSvc, logger)

		record := models.NewBudgetRecord("Engineering", "Technology", 2025, 100000, 0, "")
		mockSvc.On("Create", mock.Anything, mock.AnythingOfType("models.Caller"), mock.AnythingOfType("budget.CreateInput")).
			Return(record, nil)

		body, _ := json.Marshal(map[string]interface{}{
			"department":       "Engineering",
			"sector":           "Technology",
			"year":             2025,
			"allocated_amount": 100000,
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/budgets", bytes.NewReader(body))
		req = withTestCaller(req, models.RoleAdmin)
		w := httptest.NewRecorder()

		handler.HandleCreateBudget(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "Engineering", data["department"])
		assert.Equal(t, 0.0, data["utilized_amount"])
	})

	t.Run("rejects missing body fields", func(t *testing.T) {
		mockSvc := new(MockBudgetService)
		handler := NewBudgetHandler(mockSvc, logger)

		body := []byte(`{"sector":"Technology"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/budgets", bytes.NewReader(body))
		req = withTestCaller(req, models.RoleAdmin)
		w := httptest.NewRecorder()

		handler.HandleCreateBudget(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockSvc.AssertNotCalled(t, "Create")
	})

	t.Run("forbidden propagates from service", func(t *testing.T) {
		mockSvc := new(MockBudgetService)
		handler := NewBudgetHandler(mockSvc, logger)

		mockSvc.On("Create", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, services.ErrForbidden)

		body := []byte(`{"department":"Engineering","sector":"Technology","year":2025,"allocated_amount":100000}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/budgets", bytes.NewReader(body))
		req = withTestCaller(req, models.RoleMember)
		w := httptest.NewRecorder()

		handler.HandleCreateBudget(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("conflict propagates from service", func(t *testing.T) {
		mockSvc := new(MockBudgetService)
		handler := NewBudgetHandler(mockSvc, logger)

		mockSvc.On("Create", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, services.ErrDuplicateBudget)

		body := []byte(`{"department":"Engineering","sector":"Technology","year":2025,"allocated_amount":100000}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/budgets", bytes.NewReader(body))
		req = withTestCaller(req, models.RoleAdmin)
		w := httptest.NewRecorder()

		handler.HandleCreateBudget(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unauthorized without caller", func(t *testing.T) {
		mockSvc := new(MockBudgetService)
		handler := NewBudgetHandler(mockSvc, logger)

		body := []byte(`{"department":"Engineering","sector":"Technology","year":2025,"allocated_amount":100000}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/budgets", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.HandleCreateBudget(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandleListBudgets(t *testing.T) {
	logger := zap.NewNop()

	t.Run("passes query filters to service", func(t *testing.T) {
		mockSvc := new(MockBudgetService)
		handler := NewBudgetHandler(mockSvc, logger)

		records := []*models.BudgetRecord{
			models.NewBudgetRecord("Engineering", "Technology", 2025, 100000, 0, ""),
		}
		mockSvc.On("List", mock.Anything, mock.MatchedBy(func(f models.BudgetFilter) bool {
			return f.Sector != nil && *f.Sector == "Technology" &&
				f.Year != nil && *f.Year == 2025 &&
				f.Department == nil
		})).Return(records, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/budgets?sector=Technology&year=2025", nil)
		req = withTestCaller(req, models.RoleMember)
		w := httptest.NewRecorder()

		handler.HandleListBudgets(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("rejects non-numeric year", func(t *testing.T) {
		mockSvc := new(MockBudgetService)
		handler := NewBudgetHandler(mockSvc, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/budgets?year=abc", nil)
		req = withTestCaller(req, models.RoleMember)
		w := httptest.NewRecorder()

		handler.HandleListBudgets(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockSvc.AssertNotCalled(t, "List")
	})
}

func TestHandleGetBudget(t *testing.T) {
	logger := zap.NewNop()

	t.Run("returns record", func(t *testing.T) {
		mockSvc := new(MockBudgetService)
		handler := NewBudgetHandler(mockSvc, logger)

		record := models.NewBudgetRecord("Engineering", "Technology", 2025, 100000, 0, "")
		mockSvc.On("GetByID", mock.Anything, record.ID).Return(record, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/budgets/"+record.ID.String(), nil)
		req = withURLParam(req, "id", record.ID.String())
		w := httptest.NewRecorder()

		handler.HandleGetBudget(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found propagates from service", func(t *testing.T) {
		mockSvc := new(MockBudgetService)
		handler := NewBudgetHandler(mockSvc, logger)

		id := uuid.New()
		mockSvc.On("GetByID", mock.Anything, id).Return(nil, services.ErrBudgetNotFound)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/budgets/"+id.String(), nil)
		req = withURLParam(req, "id", id.String())
		w := httptest.NewRecorder()

		handler.HandleGetBudget(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rejects malformed id", func(t *testing.T) {
		mockSvc := new(MockBudgetService)
		handler := NewBudgetHandler(mockSvc, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/budgets/nope", nil)
		req = withURLParam(req, "id", "nope")
		w := httptest.NewRecorder()

		handler.HandleGetBudget(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockSvc.AssertNotCalled(t, "GetByID")
	})
}

func TestHandleUpdateBudget(t *testing.T) {
	logger := zap.NewNop()

	t.Run("passes amount pointers through including zero", func(t *testing.T) {
		mockSvc := new(MockBudgetService)
		handler := NewBudgetHandler(mockSvc, logger)

		record := models.NewBudgetRecord("Engineering", "Technology", 2025, 0, 0, "")
		mockSvc.On("Update", mock.Anything, mock.AnythingOfType("models.Caller"), record.ID,
			mock.MatchedBy(func(input budget.UpdateInput) bool {
				return input.AllocatedAmount != nil && *input.AllocatedAmount == 0 &&
					input.UtilizedAmount == nil && input.Department == ""
			})).Return(record, nil)

		body := []byte(`{"allocated_amount":0}`)
		req := httptest.NewRequest(http.MethodPut, "/api/v1/budgets/"+record.ID.String(), bytes.NewReader(body))
		req = withTestCaller(req, models.RoleAdmin)
		req = withURLParam(req, "id", record.ID.String())
		w := httptest.NewRecorder()

		handler.HandleUpdateBudget(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("forbidden propagates from service", func(t *testing.T) {
		mockSvc := new(MockBudgetService)
		handler := NewBudgetHandler(mockSvc, logger)

		id := uuid.New()
		mockSvc.On("Update", mock.Anything, mock.Anything, id, mock.Anything).
			Return(nil, services.ErrForbidden)

		body := []byte(`{"notes":"x"}`)
		req := httptest.NewRequest(http.MethodPut, "/api/v1/budgets/"+id.String(), bytes.NewReader(body))
		req = withTestCaller(req, models.RoleMember)
		req = withURLParam(req, "id", id.String())
		w := httptest.NewRecorder()

		handler.HandleUpdateBudget(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestHandleDeleteBudget(t *testing.T) {
	logger := zap.NewNop()

	t.Run("deletes record", func(t *testing.T) {
		mockSvc := new(MockBudgetService)
		handler := NewBudgetHandler(mockSvc, logger)

		id := uuid.New()
		mockSvc.On("Delete", mock.Anything, mock.AnythingOfType("models.Caller"), id).Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/budgets/"+id.String(), nil)
		req = withTestCaller(req, models.RoleAdmin)
		req = withURLParam(req, "id", id.String())
		w := httptest.NewRecorder()

		handler.HandleDeleteBudget(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("not found propagates from service", func(t *testing.T) {
		mockSvc := new(MockBudgetService)
		handler := NewBudgetHandler(mockSvc, logger)

		id := uuid.New()
		mockSvc.On("Delete", mock.Anything, mock.Anything, id).Return(services.ErrBudgetNotFound)

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/budgets/"+id.String(), nil)
		req = withTestCaller(req, models.RoleAdmin)
		req = withURLParam(req, "id", id.String())
		w := httptest.NewRecorder()

		handler.HandleDeleteBudget(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
