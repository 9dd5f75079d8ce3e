package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/upb/budget-registry/auth"
	"github.com/upb/budget-registry/models"
	"go.uber.org/zap"
)

// stubValidator returns fixed claims or a fixed error
type stubValidator struct {
	claims *auth.Claims
	err    error
}

func (s *stubValidator) Validate(token string) (*auth.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

func claimsFor(id uuid.UUID, role models.UserRole) *auth.Claims {
	return &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: id.String()},
		Email:            "ana@example.com",
		Role:             role,
	}
}

func TestRequireAuth(t *testing.T) {
	logger := zap.NewNop()

	t.Run("places caller in context on valid token", func(t *testing.T) {
		callerID := uuid.New()
		m := NewAuthMiddleware(&stubValidator{claims: claimsFor(callerID, models.RoleAuditor)}, logger)

		var seen models.Caller
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetCallerFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer some-token")
		w := httptest.NewRecorder()

		m.RequireAuth(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, callerID, seen.ID)
		assert.Equal(t, models.RoleAuditor, seen.Role)
	})

	t.Run("rejects missing header", func(t *testing.T) {
		m := NewAuthMiddleware(&stubValidator{claims: claimsFor(uuid.New(), models.RoleAdmin)}, logger)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()

		m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not be called")
		})).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects malformed header", func(t *testing.T) {
		m := NewAuthMiddleware(&stubValidator{claims: claimsFor(uuid.New(), models.RoleAdmin)}, logger)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic abc123")
		w := httptest.NewRecorder()

		m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not be called")
		})).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects invalid token", func(t *testing.T) {
		m := NewAuthMiddleware(&stubValidator{err: errors.New("bad signature")}, logger)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer some-token")
		w := httptest.NewRecorder()

		m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not be called")
		})).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects non-uuid subject", func(t *testing.T) {
		claims := &auth.Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "not-a-uuid"},
			Role:             models.RoleAdmin,
		}
		m := NewAuthMiddleware(&stubValidator{claims: claims}, logger)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer some-token")
		w := httptest.NewRecorder()

		m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not be called")
		})).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	logger := zap.NewNop()

	t.Run("passes matching role", func(t *testing.T) {
		m := NewAuthMiddleware(&stubValidator{}, logger)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		caller := models.Caller{ID: uuid.New(), Role: models.RoleAdmin}
		req = req.WithContext(WithCaller(req.Context(), caller))
		w := httptest.NewRecorder()

		called := false
		m.RequireRole(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		})).ServeHTTP(w, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("forbids mismatched role", func(t *testing.T) {
		m := NewAuthMiddleware(&stubValidator{}, logger)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		caller := models.Caller{ID: uuid.New(), Role: models.RoleAuditor}
		req = req.WithContext(WithCaller(req.Context(), caller))
		w := httptest.NewRecorder()

		m.RequireRole(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not be called")
		})).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unauthorized when caller absent", func(t *testing.T) {
		m := NewAuthMiddleware(&stubValidator{}, logger)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()

		m.RequireRole(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not be called")
		})).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
