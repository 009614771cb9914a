package ledger

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"brisa/internal/domain/category"
	"brisa/internal/domain/expense"
	"brisa/internal/domain/job"
	"brisa/internal/domain/transaction"
	"brisa/internal/store"
)

// Synchronizer keeps the ledger's derived transactions in step with
// jobs and expenses. It subscribes to the post-commit event bus; a
// propagation failure is logged and swallowed so the primary mutation
// it mirrors is never rolled back. The ledger can therefore lag until
// the next write to the same record repairs it.
type Synchronizer struct {
	store      store.Store
	categories *category.Resolver
	log        zerolog.Logger
}

func NewSynchronizer(st store.Store, resolver *category.Resolver, log zerolog.Logger) *Synchronizer {
	return &Synchronizer{store: st, categories: resolver, log: log}
}

// HandleEvent is the bus entry point. Unknown events are ignored.
func (s *Synchronizer) HandleEvent(ctx context.Context, event any) {
	var err error
	switch e := event.(type) {
	case job.StatusChangedEvent:
		err = s.OnJobStatusChanged(ctx, e.Job, e.Previous)
	case expense.CreatedEvent:
		err = s.OnExpenseCreated(ctx, e.Expense)
	case expense.UpdatedEvent:
		err = s.OnExpenseUpdated(ctx, e.Expense)
	case expense.DeletedEvent:
		err = s.OnExpenseDeleted(ctx, e.Expense)
	default:
		return
	}
	if err != nil {
		s.log.Error().Err(err).Type("event", event).Msg("ledger propagation failed")
	}
}

// OnJobStatusChanged reconciles the income transaction mirroring a job.
// Entering completed creates the mirror, staying completed patches it
// with the job's current figures, and leaving completed removes it.
// Transitions that never touch completed are no-ops.
func (s *Synchronizer) OnJobStatusChanged(ctx context.Context, j job.Job, previous job.Status) error {
	if err := validJobEvent(j); err != nil {
		return err
	}

	wasCompleted := previous == job.StatusCompleted
	isCompleted := j.Status == job.StatusCompleted

	switch {
	case isCompleted:
		return s.reconcileJobTransaction(ctx, j, wasCompleted)
	case wasCompleted:
		return s.removeJobTransaction(ctx, j)
	default:
		return nil
	}
}

func (s *Synchronizer) reconcileJobTransaction(ctx context.Context, j job.Job, wasCompleted bool) error {
	if j.Amount.IsNegative() {
		return fmt.Errorf("job %s has negative amount %s", j.ID, j.Amount)
	}

	existing, err := s.findByJob(ctx, j.OwnerID, j.ID)
	if err != nil {
		return err
	}

	description := "Service rendered — " + j.Description

	if existing == nil {
		// Only the transition into completed creates the mirror. An
		// edit to an already completed job whose mirror is gone does
		// not resurrect it.
		if wasCompleted {
			return nil
		}

		categoryID, err := s.categories.Resolve(ctx, j.OwnerID, category.ServicesRendered, category.TypeIncome)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		tx := transaction.Transaction{
			ID:          uuid.New().String(),
			OwnerID:     j.OwnerID,
			Type:        transaction.TypeIncome,
			CategoryID:  categoryID,
			Amount:      j.Amount,
			Date:        j.Date,
			Description: description,
			JobID:       j.ID,
			Derived:     true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if _, err := s.store.Create(ctx, transaction.Table, tx); err != nil {
			return fmt.Errorf("failed to create income transaction for job %s: %w", j.ID, err)
		}
		return nil
	}

	// Completed job edited in place. Patch only when something actually
	// changed so repeated events stay idempotent.
	patch := map[string]any{}
	if !existing.Amount.Equal(j.Amount) {
		patch["amount"] = j.Amount
	}
	if !existing.Date.Equal(j.Date) {
		patch["date"] = j.Date
	}
	if existing.Description != description {
		patch["description"] = description
	}
	if len(patch) == 0 {
		return nil
	}
	patch["updated_at"] = time.Now().UTC()

	if _, err := s.store.Update(ctx, transaction.Table, existing.ID, patch); err != nil {
		return fmt.Errorf("failed to update income transaction for job %s: %w", j.ID, err)
	}
	return nil
}

func (s *Synchronizer) removeJobTransaction(ctx context.Context, j job.Job) error {
	existing, err := s.findByJob(ctx, j.OwnerID, j.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	if _, err := s.store.Delete(ctx, transaction.Table, existing.ID); err != nil {
		return fmt.Errorf("failed to delete income transaction for job %s: %w", j.ID, err)
	}
	return nil
}

// OnExpenseCreated mirrors a new expense into the ledger.
func (s *Synchronizer) OnExpenseCreated(ctx context.Context, e expense.Expense) error {
	if err := validExpenseEvent(e); err != nil {
		return err
	}
	if e.Amount.IsNegative() {
		return fmt.Errorf("expense %s has negative amount %s", e.ID, e.Amount)
	}

	existing, err := s.findByExpense(ctx, e.OwnerID, e.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		// Duplicate event; the mirror is already there.
		return s.patchExpenseTransaction(ctx, e, existing)
	}

	categoryID, err := s.categories.Resolve(ctx, e.OwnerID, category.AdditionalExpenses, category.TypeExpense)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	tx := transaction.Transaction{
		ID:          uuid.New().String(),
		OwnerID:     e.OwnerID,
		Type:        transaction.TypeExpense,
		CategoryID:  categoryID,
		Amount:      e.Amount,
		Date:        e.Date,
		Description: "Additional expense: " + e.Description,
		ExpenseID:   e.ID,
		Derived:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.store.Create(ctx, transaction.Table, tx); err != nil {
		return fmt.Errorf("failed to create expense transaction for expense %s: %w", e.ID, err)
	}
	return nil
}

// OnExpenseUpdated patches the mirrored entry with the expense's current
// figures. A missing mirror means an earlier propagation was lost; the
// update does not resurrect it.
func (s *Synchronizer) OnExpenseUpdated(ctx context.Context, e expense.Expense) error {
	if err := validExpenseEvent(e); err != nil {
		return err
	}
	if e.Amount.IsNegative() {
		return fmt.Errorf("expense %s has negative amount %s", e.ID, e.Amount)
	}

	existing, err := s.findByExpense(ctx, e.OwnerID, e.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	return s.patchExpenseTransaction(ctx, e, existing)
}

// OnExpenseDeleted removes the mirrored entry. A missing mirror is fine;
// there is nothing left to clean up.
func (s *Synchronizer) OnExpenseDeleted(ctx context.Context, e expense.Expense) error {
	if err := validExpenseEvent(e); err != nil {
		return err
	}

	existing, err := s.findByExpense(ctx, e.OwnerID, e.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	if _, err := s.store.Delete(ctx, transaction.Table, existing.ID); err != nil {
		return fmt.Errorf("failed to delete expense transaction for expense %s: %w", e.ID, err)
	}
	return nil
}

// Malformed events are rejected before any store call.
func validJobEvent(j job.Job) error {
	if j.ID == "" {
		return fmt.Errorf("job event missing job id")
	}
	if j.OwnerID == 0 {
		return fmt.Errorf("job %s event missing owner id", j.ID)
	}
	return nil
}

func validExpenseEvent(e expense.Expense) error {
	if e.ID == "" {
		return fmt.Errorf("expense event missing expense id")
	}
	if e.OwnerID == 0 {
		return fmt.Errorf("expense %s event missing owner id", e.ID)
	}
	return nil
}

func (s *Synchronizer) patchExpenseTransaction(ctx context.Context, e expense.Expense, existing *transaction.Transaction) error {
	description := "Additional expense: " + e.Description

	patch := map[string]any{}
	if !existing.Amount.Equal(e.Amount) {
		patch["amount"] = e.Amount
	}
	if !existing.Date.Equal(e.Date) {
		patch["date"] = e.Date
	}
	if existing.Description != description {
		patch["description"] = description
	}
	if len(patch) == 0 {
		return nil
	}
	patch["updated_at"] = time.Now().UTC()

	if _, err := s.store.Update(ctx, transaction.Table, existing.ID, patch); err != nil {
		return fmt.Errorf("failed to update expense transaction for expense %s: %w", e.ID, err)
	}
	return nil
}

// findByJob returns the owner's derived transaction for a job, or nil.
// Older data can contain duplicates from lost deletions; the first match
// wins and the rest are left for a manual cleanup.
func (s *Synchronizer) findByJob(ctx context.Context, ownerID int64, jobID string) (*transaction.Transaction, error) {
	return s.findOne(ctx, store.Filter{
		"owner_id": strconv.FormatInt(ownerID, 10),
		"job_id":   jobID,
	})
}

func (s *Synchronizer) findByExpense(ctx context.Context, ownerID int64, expenseID string) (*transaction.Transaction, error) {
	return s.findOne(ctx, store.Filter{
		"owner_id":   strconv.FormatInt(ownerID, 10),
		"expense_id": expenseID,
	})
}

func (s *Synchronizer) findOne(ctx context.Context, filter store.Filter) (*transaction.Transaction, error) {
	data, err := s.store.FindWhere(ctx, transaction.Table, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find derived transaction: %w", err)
	}
	matches, err := store.Decode[transaction.Transaction](data)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}
