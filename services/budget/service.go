package budget

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/upb/budget-registry/models"
	"github.com/upb/budget-registry/repositories"
	"github.com/upb/budget-registry/services"
	"go.uber.org/zap"
)

// Field identifies a writable budget record field in the role policy table
type Field string

const (
	FieldDepartment Field = "department"
	FieldSector     Field = "sector"
	FieldYear       Field = "year"
	FieldAllocated  Field = "allocated_amount"
	FieldUtilized   Field = "utilized_amount"
	FieldNotes      Field = "notes"
)

// writableFields maps a role to the set of fields it may write on update.
// Roles absent from the table may not update at all. Fields outside a role's
// set are silently ignored, not rejected.
var writableFields = map[models.UserRole]map[Field]bool{
	models.RoleAdmin: {
		FieldDepartment: true,
		FieldSector:     true,
		FieldYear:       true,
		FieldAllocated:  true,
		FieldUtilized:   true,
		FieldNotes:      true,
	},
	models.RoleAuditor: {
		FieldUtilized: true,
		FieldNotes:    true,
	},
}

// CreateInput holds the fields for creating a budget record
type CreateInput struct {
	Department      string
	Sector          string
	Year            int
	AllocatedAmount *float64
	UtilizedAmount  *float64
	Notes           string
}

// UpdateInput holds the optional fields for updating a budget record.
// String fields and year use empty/zero to mean "leave unchanged"; the two
// amount fields are applied whenever present, including an explicit zero.
type UpdateInput struct {
	Department      string
	Sector          string
	Year            int
	AllocatedAmount *float64
	UtilizedAmount  *float64
	Notes           string
}

// AuditRecorder records audit trail entries for mutations
type AuditRecorder interface {
	Record(ctx context.Context, log *models.AuditLog)
}

// Service owns the create/read/update/delete lifecycle of budget records,
// enforcing per-role field write permissions. It holds no state of its own;
// every operation re-fetches current state from the repository.
type Service struct {
	budgetRepo repositories.BudgetRepository
	audit      AuditRecorder
	logger     *zap.Logger
}

// NewService creates a new budget Service instance
func NewService(budgetRepo repositories.BudgetRepository, audit AuditRecorder, logger *zap.Logger) *Service {
	return &Service{
		budgetRepo: budgetRepo,
		audit:      audit,
		logger:     logger,
	}
}

// Create creates a new budget record. Admin-only. Fails with a conflict when
// a record already exists for the same (department, year) pair.
func (s *Service) Create(ctx context.Context, caller models.Caller, input CreateInput) (*models.BudgetRecord, error) {
	if !caller.IsAdmin() {
		s.logger.Warn("budget create denied",
			zap.String("caller_id", caller.ID.String()),
			zap.String("role", string(caller.Role)))
		return nil, services.ErrForbidden
	}

	if err := validateCreate(input); err != nil {
		return nil, err
	}

	department := strings.TrimSpace(input.Department)
	year := input.Year

	// Application-level duplicate check. The store's unique constraint on
	// (department, year) closes the race between this check and the insert.
	existing, err := s.budgetRepo.GetByDepartmentYear(ctx, department, year)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, services.WrapInternal("failed to check for existing budget", err)
	}
	if existing != nil {
		return nil, services.ErrDuplicateBudget
	}

	utilized := 0.0
	if input.UtilizedAmount != nil {
		utilized = *input.UtilizedAmount
	}

	record := models.NewBudgetRecord(
		input.Department,
		input.Sector,
		year,
		*input.AllocatedAmount,
		utilized,
		input.Notes,
	)

	if err := s.budgetRepo.Create(ctx, record); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, services.ErrDuplicateBudget
		}
		return nil, services.WrapInternal("failed to create budget record", err)
	}

	s.logger.Info("budget record created",
		zap.String("id", record.ID.String()),
		zap.String("department", record.Department),
		zap.Int("year", record.Year),
		zap.String("caller_id", caller.ID.String()))

	s.audit.Record(ctx, models.NewAuditLog(caller, models.AuditActionBudgetCreated, record.TableName()).
		WithResource(record.ID).
		WithDetails(map[string]interface{}{
			"department": record.Department,
			"year":       record.Year,
		}))

	return record, nil
}

// List returns records matching all supplied filters, ordered by year
// descending then department ascending. Any authenticated caller may list.
func (s *Service) List(ctx context.Context, filter models.BudgetFilter) ([]*models.BudgetRecord, error) {
	records, err := s.budgetRepo.List(ctx, filter)
	if err != nil {
		return nil, services.WrapInternal("failed to list budget records", err)
	}
	return records, nil
}

// GetByID returns the single record or a not-found error
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.BudgetRecord, error) {
	record, err := s.budgetRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrBudgetNotFound
		}
		return nil, services.WrapInternal("failed to get budget record", err)
	}
	return record, nil
}

// Update applies the supplied fields to a record subject to the caller's
// role policy. Fields outside the role's writable set are silently ignored.
// Last write wins; there is no version check.
func (s *Service) Update(ctx context.Context, caller models.Caller, id uuid.UUID, input UpdateInput) (*models.BudgetRecord, error) {
	allowed, ok := writableFields[caller.Role]
	if !ok {
		s.logger.Warn("budget update denied",
			zap.String("caller_id", caller.ID.String()),
			zap.String("role", string(caller.Role)))
		return nil, services.ErrForbidden
	}

	record, err := s.budgetRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrBudgetNotFound
		}
		return nil, services.WrapInternal("failed to get budget record", err)
	}

	changed := applyUpdate(record, input, allowed)

	if record.AllocatedAmount < 0 || record.UtilizedAmount < 0 {
		return nil, services.ErrNegativeAmount
	}

	record.Touch()

	if err := s.budgetRepo.Update(ctx, record); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, services.ErrBudgetNotFound
		case errors.Is(err, repositories.ErrDuplicateKey):
			return nil, services.ErrDuplicateBudget
		default:
			return nil, services.WrapInternal("failed to update budget record", err)
		}
	}

	s.logger.Info("budget record updated",
		zap.String("id", record.ID.String()),
		zap.Strings("fields", changed),
		zap.String("caller_id", caller.ID.String()),
		zap.String("role", string(caller.Role)))

	s.audit.Record(ctx, models.NewAuditLog(caller, models.AuditActionBudgetUpdated, record.TableName()).
		WithResource(record.ID).
		WithDetails(map[string]interface{}{"fields": changed}))

	return record, nil
}

// Delete permanently removes a record. Admin-only.
func (s *Service) Delete(ctx context.Context, caller models.Caller, id uuid.UUID) error {
	if !caller.IsAdmin() {
		s.logger.Warn("budget delete denied",
			zap.String("caller_id", caller.ID.String()),
			zap.String("role", string(caller.Role)))
		return services.ErrForbidden
	}

	if err := s.budgetRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return services.ErrBudgetNotFound
		}
		return services.WrapInternal("failed to delete budget record", err)
	}

	s.logger.Info("budget record deleted",
		zap.String("id", id.String()),
		zap.String("caller_id", caller.ID.String()))

	s.audit.Record(ctx, models.NewAuditLog(caller, models.AuditActionBudgetDeleted, models.BudgetRecord{}.TableName()).
		WithResource(id))

	return nil
}

// applyUpdate merges input into record, honoring the role's writable-field
// set, and returns the names of fields that were applied. String fields and
// year keep the legacy merge semantics: an empty/zero value means "leave
// unchanged". Amount fields are replaced whenever present, including zero.
func applyUpdate(record *models.BudgetRecord, input UpdateInput, allowed map[Field]bool) []string {
	changed := make([]string, 0, len(allowed))

	if allowed[FieldDepartment] && input.Department != "" {
		record.Department = strings.TrimSpace(input.Department)
		changed = append(changed, string(FieldDepartment))
	}
	if allowed[FieldSector] && input.Sector != "" {
		record.Sector = strings.TrimSpace(input.Sector)
		changed = append(changed, string(FieldSector))
	}
	if allowed[FieldYear] && input.Year != 0 {
		record.Year = input.Year
		changed = append(changed, string(FieldYear))
	}
	if allowed[FieldAllocated] && input.AllocatedAmount != nil {
		record.AllocatedAmount = *input.AllocatedAmount
		changed = append(changed, string(FieldAllocated))
	}
	if allowed[FieldUtilized] && input.UtilizedAmount != nil {
		record.UtilizedAmount = *input.UtilizedAmount
		changed = append(changed, string(FieldUtilized))
	}
	if allowed[FieldNotes] && input.Notes != "" {
		record.Notes = input.Notes
		changed = append(changed, string(FieldNotes))
	}

	return changed
}

// validateCreate checks required fields and amount signs for creation
func validateCreate(input CreateInput) error {
	if strings.TrimSpace(input.Department) == "" {
		return services.NewDomainError(services.ErrorTypeValidation, "department is required", nil)
	}
	if strings.TrimSpace(input.Sector) == "" {
		return services.NewDomainError(services.ErrorTypeValidation, "sector is required", nil)
	}
	if input.Year == 0 {
		return services.NewDomainError(services.ErrorTypeValidation, "year is required", nil)
	}
	if input.AllocatedAmount == nil {
		return services.NewDomainError(services.ErrorTypeValidation, "allocated_amount is required", nil)
	}
	if *input.AllocatedAmount < 0 {
		return services.ErrNegativeAmount
	}
	if input.UtilizedAmount != nil && *input.UtilizedAmount < 0 {
		return services.ErrNegativeAmount
	}
	return nil
}
