package transaction

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Table is the record store table for ledger transactions.
const Table = "transactions"

// Type is the ledger direction of a transaction.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Domain errors
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrForbidden           = errors.New("access forbidden")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrInvalidAmount       = errors.New("transaction amount must not be negative")

	// ErrLinkedToCompletedJob is returned when a caller tries to edit or
	// delete a transaction that mirrors a completed job directly. The
	// wording is surfaced verbatim to API clients.
	ErrLinkedToCompletedJob = errors.New("editing/deleting transactions linked to completed jobs is only permitted through the Jobs screen")
)

// Transaction is a single ledger entry. Derived entries mirror a job
// payment or a job expense and carry the source record's ID.
type Transaction struct {
	ID          string          `json:"id"`
	OwnerID     int64           `json:"owner_id"`
	Type        Type            `json:"type"`
	CategoryID  string          `json:"category_id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	JobID       string          `json:"job_id,omitempty"`
	ExpenseID   string          `json:"expense_id,omitempty"`
	Derived     bool            `json:"is_derived"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateParams contains parameters for recording a manual transaction.
type CreateParams struct {
	OwnerID     int64
	Type        Type
	CategoryID  string
	Amount      decimal.Decimal
	Date        time.Time
	Description string
}

func (p CreateParams) Validate() error {
	if p.OwnerID <= 0 {
		return errors.New("valid owner ID is required")
	}
	if !IsValidType(p.Type) {
		return ErrInvalidType
	}
	if p.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if p.Date.IsZero() {
		return errors.New("transaction date is required")
	}
	return nil
}

// UpdateParams contains the fields that may change on a transaction.
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

func IsValidType(t Type) bool {
	return t == TypeIncome || t == TypeExpense
}
