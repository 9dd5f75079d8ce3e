package app

import (
	"context"
	"fmt"

	"github.com/upb/budget-registry/auth"
	"github.com/upb/budget-registry/config"
	"github.com/upb/budget-registry/handlers"
	"github.com/upb/budget-registry/middleware"
	"github.com/upb/budget-registry/repositories"
	"github.com/upb/budget-registry/repositories/postgres"
	"github.com/upb/budget-registry/services/audit"
	"github.com/upb/budget-registry/services/budget"
	"github.com/upb/budget-registry/services/report"
	"github.com/upb/budget-registry/services/user"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Budgets   repositories.BudgetRepository
	Users     repositories.UserRepository
	AuditLogs repositories.AuditRepository
	TxManager repositories.TransactionManager

	// Services
	BudgetService *budget.Service
	ReportService *report.Service
	UserService   *user.Service
	AuditService  *audit.Service

	// Auth
	TokenManager   *auth.TokenManager
	AuthMiddleware *middleware.AuthMiddleware

	// Handlers
	BudgetHandler *handlers.BudgetHandler
	ReportHandler *handlers.ReportHandler
	UserHandler   *handlers.UserHandler
	AuditHandler  *handlers.AuditHandler
	HealthHandler *handlers.HealthHandler
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories()
	deps.initAuth(cfg)
	deps.initServices()
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL database connection and factory
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if err := d.DB.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Budgets = repos.Budgets
	d.Users = repos.Users
	d.AuditLogs = repos.AuditLogs
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

// initAuth initializes the token manager and auth middleware
func (d *Dependencies) initAuth(cfg *config.Config) {
	d.TokenManager = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.TokenManager, d.Logger)
}

// initServices initializes all service instances
func (d *Dependencies) initServices() {
	d.AuditService = audit.NewService(d.AuditLogs, d.Logger)
	d.BudgetService = budget.NewService(d.Budgets, d.AuditService, d.Logger)
	d.ReportService = report.NewService(d.Budgets, d.Logger)
	d.UserService = user.NewService(d.Users, d.TokenManager, d.Logger)
}

// initHandlers initializes all HTTP handlers
func (d *Dependencies) initHandlers() {
	d.BudgetHandler = handlers.NewBudgetHandler(d.BudgetService, d.Logger)
	d.ReportHandler = handlers.NewReportHandler(d.ReportService, d.Logger)
	d.UserHandler = handlers.NewUserHandler(d.UserService, d.Logger)
	d.AuditHandler = handlers.NewAuditHandler(d.AuditService, d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(d.DB, d.Logger)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
