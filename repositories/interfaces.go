package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/budget-registry/models"
)

// Sentinel errors returned by repository implementations. Services translate
// these into domain errors; use errors.Is to check.
var (
	// ErrNotFound is returned when a referenced row does not exist
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when an insert violates a uniqueness constraint
	ErrDuplicateKey = errors.New("duplicate key")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction.
	// Automatically commits if function succeeds, rolls back on error.
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// BudgetRepository handles budget record data operations
type BudgetRepository interface {
	// Create inserts a new budget record
	Create(ctx context.Context, record *models.BudgetRecord) error

	// GetByID retrieves a budget record by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.BudgetRecord, error)

	// GetByDepartmentYear retrieves the record for a (department, year) pair
	GetByDepartmentYear(ctx context.Context, department string, year int) (*models.BudgetRecord, error)

	// List retrieves records matching the filter,
	// ordered by year descending then department ascending
	List(ctx context.Context, filter models.BudgetFilter) ([]*models.BudgetRecord, error)

	// Update persists a modified budget record
	Update(ctx context.Context, record *models.BudgetRecord) error

	// Delete permanently removes a budget record
	Delete(ctx context.Context, id uuid.UUID) error

	// SummaryByYear aggregates totals and counts per year,
	// ordered by year descending. A nil year leaves the scan unfiltered.
	SummaryByYear(ctx context.Context, year *int) ([]*models.YearSummary, error)

	// SummaryBySector aggregates totals and counts per (sector, year),
	// ordered by year descending then sector ascending.
	SummaryBySector(ctx context.Context, year *int) ([]*models.SectorSummary, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) BudgetRepository
}

// UserRepository handles user account data operations
type UserRepository interface {
	// Create inserts a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// List retrieves all users with pagination
	List(ctx context.Context, limit, offset int) ([]*models.User, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) UserRepository
}

// Repositories bundles all repository instances
type Repositories struct {
	Budgets   BudgetRepository
	Users     UserRepository
	AuditLogs AuditRepository
}

// AuditRepository handles audit log data operations
type AuditRepository interface {
	// Insert inserts a new audit log entry
	Insert(ctx context.Context, log *models.AuditLog) error

	// ListByActor retrieves audit logs for an actor with pagination
	ListByActor(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]*models.AuditLog, error)

	// ListByResource retrieves audit logs for a resource
	ListByResource(ctx context.Context, resourceID uuid.UUID) ([]*models.AuditLog, error)
}
