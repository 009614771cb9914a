package category

import (
	"errors"
	"time"
)

// Table is the record store table for categories.
const Table = "categories"

// Type classifies which transaction kinds a category applies to.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
	TypeBoth    Type = "both"
)

// Well-known categories the ledger synchronizer targets. Both are
// created lazily per owner the first time a propagation needs them.
const (
	ServicesRendered   = "Services Rendered"
	AdditionalExpenses = "Additional Expenses"
)

// Domain errors
var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrForbidden        = errors.New("access forbidden")
	ErrInvalidType      = errors.New("invalid category type")
)

// Category represents a transaction category owned by one user.
// Names are unique per owner within a type by convention only; the
// store enforces no constraint.
type Category struct {
	ID        string    `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Name      string    `json:"name"`
	Type      Type      `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateParams contains parameters for creating a category.
type CreateParams struct {
	OwnerID int64
	Name    string
	Type    Type
}

func (p CreateParams) Validate() error {
	if p.OwnerID <= 0 {
		return errors.New("valid owner ID is required")
	}
	if p.Name == "" {
		return errors.New("category name is required")
	}
	if !IsValidType(p.Type) {
		return ErrInvalidType
	}
	return nil
}

func IsValidType(t Type) bool {
	switch t {
	case TypeIncome, TypeExpense, TypeBoth:
		return true
	}
	return false
}
