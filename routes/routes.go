package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/budget-registry/app"
	"github.com/upb/budget-registry/models"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/healthz", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Account endpoints (register/login are public)
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", deps.UserHandler.HandleRegister)
			r.Post("/login", deps.UserHandler.HandleLogin)

			r.Group(func(r chi.Router) {
				r.Use(deps.AuthMiddleware.RequireAuth)
				r.Get("/", deps.UserHandler.HandleListUsers)
				r.Get("/me", deps.UserHandler.HandleMe)
			})
		})

		// Budget record endpoints (require authentication; per-role write
		// permissions are decided in the service layer)
		r.Route("/budgets", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Get("/", deps.BudgetHandler.HandleListBudgets)
			r.Post("/", deps.BudgetHandler.HandleCreateBudget)
			r.Get("/{id}", deps.BudgetHandler.HandleGetBudget)
			r.Put("/{id}", deps.BudgetHandler.HandleUpdateBudget)
			r.Delete("/{id}", deps.BudgetHandler.HandleDeleteBudget)

			// Audit trail (require admin role)
			r.Group(func(r chi.Router) {
				r.Use(deps.AuthMiddleware.RequireRole(models.RoleAdmin))
				r.Get("/{id}/audit", deps.AuditHandler.HandleListBudgetAudit)
			})
		})

		// Report endpoints (public, read-only)
		r.Route("/reports", func(r chi.Router) {
			r.Get("/summary", deps.ReportHandler.HandleYearSummary)
			r.Get("/sectors", deps.ReportHandler.HandleSectorSummary)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
