package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// BudgetRecord represents one fiscal allocation entry for a department.
// Exactly one record may exist per (department, year) pair.
type BudgetRecord struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Department      string    `json:"department" db:"department"`
	Sector          string    `json:"sector" db:"sector"`
	Year            int       `json:"year" db:"year"`
	AllocatedAmount float64   `json:"allocated_amount" db:"allocated_amount"`
	UtilizedAmount  float64   `json:"utilized_amount" db:"utilized_amount"`
	Notes           string    `json:"notes" db:"notes"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the BudgetRecord model
func (BudgetRecord) TableName() string {
	return "budget_records"
}

// NewBudgetRecord creates a new BudgetRecord instance. Department and sector
// are trimmed of surrounding whitespace.
func NewBudgetRecord(department, sector string, year int, allocated, utilized float64, notes string) *BudgetRecord {
	now := time.Now()
	return &BudgetRecord{
		ID:              uuid.New(),
		Department:      strings.TrimSpace(department),
		Sector:          strings.TrimSpace(sector),
		Year:            year,
		AllocatedAmount: allocated,
		UtilizedAmount:  utilized,
		Notes:           notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Touch refreshes the UpdatedAt timestamp
func (b *BudgetRecord) Touch() {
	b.UpdatedAt = time.Now()
}

// BudgetFilter holds optional exact-match filters for listing budget records.
// Nil fields are unconstrained; supplied fields are ANDed.
type BudgetFilter struct {
	Department *string
	Sector     *string
	Year       *int
}
