package report

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidPeriod = errors.New("period end must not be before period start")

// Period is a closed date range. Transactions dated exactly on either
// bound are included.
type Period struct {
	From time.Time
	To   time.Time
}

func (p Period) Validate() error {
	if p.From.IsZero() || p.To.IsZero() {
		return errors.New("period start and end are required")
	}
	if p.To.Before(p.From) {
		return ErrInvalidPeriod
	}
	return nil
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.From) && !t.After(p.To)
}

// CategoryTotal is one category's share of a period.
type CategoryTotal struct {
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Total        decimal.Decimal `json:"total"`
	Count        int             `json:"count"`
}

// Summary is the owner's financial picture for a period.
type Summary struct {
	Period       Period          `json:"-"`
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Net          decimal.Decimal `json:"net"`
	Income       []CategoryTotal `json:"income_by_category"`
	Expenses     []CategoryTotal `json:"expenses_by_category"`
}
