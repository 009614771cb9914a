package expense

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Table is the record store table for expenses.
const Table = "expenses"

// Domain errors
var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrForbidden       = errors.New("access forbidden")
	ErrInvalidAmount   = errors.New("expense amount must not be negative")
)

// Expense is an additional cost tied to a job. Every create, update
// and delete propagates to exactly one derived ledger transaction.
type Expense struct {
	ID          string          `json:"id"`
	JobID       string          `json:"job_id"`
	OwnerID     int64           `json:"owner_id"`
	CategoryID  string          `json:"category_id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Post-commit events consumed by the ledger synchronizer.
type (
	CreatedEvent struct{ Expense Expense }
	UpdatedEvent struct{ Expense Expense }
	DeletedEvent struct{ Expense Expense }
)

// CreateParams contains parameters for creating an expense.
type CreateParams struct {
	JobID       string
	OwnerID     int64
	CategoryID  string
	Amount      decimal.Decimal
	Date        time.Time
	Description string
}

func (p CreateParams) Validate() error {
	if p.OwnerID <= 0 {
		return errors.New("valid owner ID is required")
	}
	if p.JobID == "" {
		return errors.New("job ID is required")
	}
	if p.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if p.Date.IsZero() {
		return errors.New("expense date is required")
	}
	return nil
}

// UpdateParams contains the fields that may change on an expense.
type UpdateParams struct {
	CategoryID  *string
	Amount      *decimal.Decimal
	Date        *time.Time
	Description *string
}

func (p UpdateParams) Validate() error {
	if p.Amount != nil && p.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}
