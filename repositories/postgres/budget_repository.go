package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/upb/budget-registry/models"
	"github.com/upb/budget-registry/repositories"
	"go.uber.org/zap"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations
const uniqueViolation = "23505"

// BudgetRepository implements the repositories.BudgetRepository interface
type BudgetRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewBudgetRepository creates a new budget repository
func NewBudgetRepository(db *DB, logger *zap.Logger) repositories.BudgetRepository {
	return &BudgetRepository{
		db:     db,
		logger: logger,
	}
}

const budgetColumns = `id, department, sector, year, allocated_amount, utilized_amount, notes, created_at, updated_at`

// Create inserts a new budget record
func (r *BudgetRepository) Create(ctx context.Context, record *models.BudgetRecord) error {
	query := `
		INSERT INTO budget_records (id, department, sector, year, allocated_amount, utilized_amount, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		record.ID,
		record.Department,
		record.Sector,
		record.Year,
		record.AllocatedAmount,
		record.UtilizedAmount,
		record.Notes,
		record.CreatedAt,
		record.UpdatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: budget for %s in %d", repositories.ErrDuplicateKey, record.Department, record.Year)
		}
		return fmt.Errorf("failed to create budget record: %w", err)
	}

	r.logger.Debug("budget record created",
		zap.String("id", record.ID.String()),
		zap.String("department", record.Department),
		zap.Int("year", record.Year))
	return nil
}

// GetByID retrieves a budget record by ID
func (r *BudgetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BudgetRecord, error) {
	query := `SELECT ` + budgetColumns + ` FROM budget_records WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	record := &models.BudgetRecord{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.Department,
		&record.Sector,
		&record.Year,
		&record.AllocatedAmount,
		&record.UtilizedAmount,
		&record.Notes,
		&record.CreatedAt,
		&record.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: budget record %s", repositories.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get budget record: %w", err)
	}

	return record, nil
}

// GetByDepartmentYear retrieves the record for a (department, year) pair
func (r *BudgetRepository) GetByDepartmentYear(ctx context.Context, department string, year int) (*models.BudgetRecord, error) {
	query := `SELECT ` + budgetColumns + ` FROM budget_records WHERE department = $1 AND year = $2`

	executor := GetExecutor(ctx, r.db)
	record := &models.BudgetRecord{}

	err := executor.QueryRowContext(ctx, query, department, year).Scan(
		&record.ID,
		&record.Department,
		&record.Sector,
		&record.Year,
		&record.AllocatedAmount,
		&record.UtilizedAmount,
		&record.Notes,
		&record.CreatedAt,
		&record.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: budget for %s in %d", repositories.ErrNotFound, department, year)
		}
		return nil, fmt.Errorf("failed to get budget record: %w", err)
	}

	return record, nil
}

// List retrieves records matching the filter, ordered by year descending
// then department ascending. Filters are exact-match and ANDed.
func (r *BudgetRepository) List(ctx context.Context, filter models.BudgetFilter) ([]*models.BudgetRecord, error) {
	query := `SELECT ` + budgetColumns + ` FROM budget_records WHERE 1=1`
	args := []interface{}{}

	if filter.Department != nil {
		args = append(args, *filter.Department)
		query += fmt.Sprintf(" AND department = $%d", len(args))
	}
	if filter.Sector != nil {
		args = append(args, *filter.Sector)
		query += fmt.Sprintf(" AND sector = $%d", len(args))
	}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		query += fmt.Sprintf(" AND year = $%d", len(args))
	}

	query += ` ORDER BY year DESC, department ASC`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list budget records: %w", err)
	}
	defer rows.Close()

	records := make([]*models.BudgetRecord, 0)
	for rows.Next() {
		record := &models.BudgetRecord{}
		if err := rows.Scan(
			&record.ID,
			&record.Department,
			&record.Sector,
			&record.Year,
			&record.AllocatedAmount,
			&record.UtilizedAmount,
			&record.Notes,
			&record.CreatedAt,
			&record.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan budget record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

// Update persists a modified budget record
func (r *BudgetRepository) Update(ctx context.Context, record *models.BudgetRecord) error {
	query := `
		UPDATE budget_records
		SET department = $2,
		    sector = $3,
		    year = $4,
		    allocated_amount = $5,
		    utilized_amount = $6,
		    notes = $7,
		    updated_at = $8
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		record.ID,
		record.Department,
		record.Sector,
		record.Year,
		record.AllocatedAmount,
		record.UtilizedAmount,
		record.Notes,
		record.UpdatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: budget for %s in %d", repositories.ErrDuplicateKey, record.Department, record.Year)
		}
		return fmt.Errorf("failed to update budget record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: budget record %s", repositories.ErrNotFound, record.ID)
	}

	r.logger.Debug("budget record updated", zap.String("id", record.ID.String()))
	return nil
}

// Delete permanently removes a budget record
func (r *BudgetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM budget_records WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete budget record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: budget record %s", repositories.ErrNotFound, id)
	}

	r.logger.Debug("budget record deleted", zap.String("id", id.String()))
	return nil
}

// SummaryByYear aggregates totals and counts per year, ordered by year descending
func (r *BudgetRepository) SummaryByYear(ctx context.Context, year *int) ([]*models.YearSummary, error) {
	query := `
		SELECT year,
		       COALESCE(SUM(allocated_amount), 0) AS total_allocated,
		       COALESCE(SUM(utilized_amount), 0) AS total_utilized,
		       COUNT(*) AS count
		FROM budget_records
	`
	args := []interface{}{}

	if year != nil {
		query += ` WHERE year = $1`
		args = append(args, *year)
	}

	query += ` GROUP BY year ORDER BY year DESC`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query year summary: %w", err)
	}
	defer rows.Close()

	summaries := make([]*models.YearSummary, 0)
	for rows.Next() {
		s := &models.YearSummary{}
		if err := rows.Scan(&s.Year, &s.TotalAllocated, &s.TotalUtilized, &s.Count); err != nil {
			return nil, fmt.Errorf("failed to scan year summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return summaries, nil
}

// SummaryBySector aggregates totals and counts per (sector, year),
// ordered by year descending then sector ascending
func (r *BudgetRepository) SummaryBySector(ctx context.Context, year *int) ([]*models.SectorSummary, error) {
	query := `
		SELECT sector,
		       year,
		       COALESCE(SUM(allocated_amount), 0) AS total_allocated,
		       COALESCE(SUM(utilized_amount), 0) AS total_utilized,
		       COUNT(*) AS count
		FROM budget_records
	`
	args := []interface{}{}

	if year != nil {
		query += ` WHERE year = $1`
		args = append(args, *year)
	}

	query += ` GROUP BY sector, year ORDER BY year DESC, sector ASC`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sector summary: %w", err)
	}
	defer rows.Close()

	summaries := make([]*models.SectorSummary, 0)
	for rows.Next() {
		s := &models.SectorSummary{}
		if err := rows.Scan(&s.Sector, &s.Year, &s.TotalAllocated, &s.TotalUtilized, &s.Count); err != nil {
			return nil, fmt.Errorf("failed to scan sector summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return summaries, nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *BudgetRepository) WithTx(tx repositories.Transaction) repositories.BudgetRepository {
	return &BudgetRepository{
		db:     r.db,
		logger: r.logger,
	}
}
