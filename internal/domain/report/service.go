package report

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"brisa/internal/domain/category"
	"brisa/internal/domain/transaction"
	"brisa/internal/store"
)

// Service builds period summaries over the ledger. Both manual and
// derived transactions count; the ledger is the single source of truth
// for money in and out.
type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Summarize totals the owner's transactions inside the period and
// breaks them down by category. Categories are labeled by name when
// the category record still exists, by ID otherwise.
func (s *Service) Summarize(ctx context.Context, ownerID int64, period Period) (*Summary, error) {
	if ownerID <= 0 {
		return nil, fmt.Errorf("valid owner ID is required")
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}

	txs, err := s.transactions(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	names, err := s.categoryNames(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Period:       period,
		From:         period.From,
		To:           period.To,
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}
	income := map[string]*CategoryTotal{}
	expenses := map[string]*CategoryTotal{}

	for _, tx := range txs {
		if !period.Contains(tx.Date) {
			continue
		}

		var bucket map[string]*CategoryTotal
		switch tx.Type {
		case transaction.TypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(tx.Amount)
			bucket = income
		case transaction.TypeExpense:
			summary.TotalExpense = summary.TotalExpense.Add(tx.Amount)
			bucket = expenses
		default:
			continue
		}

		ct, ok := bucket[tx.CategoryID]
		if !ok {
			name := names[tx.CategoryID]
			if name == "" {
				name = tx.CategoryID
			}
			ct = &CategoryTotal{CategoryID: tx.CategoryID, CategoryName: name, Total: decimal.Zero}
			bucket[tx.CategoryID] = ct
		}
		ct.Total = ct.Total.Add(tx.Amount)
		ct.Count++
	}

	summary.Net = summary.TotalIncome.Sub(summary.TotalExpense)
	summary.Income = sortedTotals(income)
	summary.Expenses = sortedTotals(expenses)
	return summary, nil
}

func (s *Service) transactions(ctx context.Context, ownerID int64) ([]transaction.Transaction, error) {
	data, err := s.store.FindWhere(ctx, transaction.Table, store.Filter{
		"owner_id": strconv.FormatInt(ownerID, 10),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return store.Decode[transaction.Transaction](data)
}

func (s *Service) categoryNames(ctx context.Context, ownerID int64) (map[string]string, error) {
	data, err := s.store.FindWhere(ctx, category.Table, store.Filter{
		"owner_id": strconv.FormatInt(ownerID, 10),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	cats, err := store.Decode[category.Category](data)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names, nil
}

// sortedTotals orders buckets largest first, ties broken by name so the
// output is stable.
func sortedTotals(bucket map[string]*CategoryTotal) []CategoryTotal {
	totals := make([]CategoryTotal, 0, len(bucket))
	for _, ct := range bucket {
		totals = append(totals, *ct)
	}
	sort.Slice(totals, func(i, j int) bool {
		if !totals[i].Total.Equal(totals[j].Total) {
			return totals[i].Total.GreaterThan(totals[j].Total)
		}
		return totals[i].CategoryName < totals[j].CategoryName
	})
	return totals
}
