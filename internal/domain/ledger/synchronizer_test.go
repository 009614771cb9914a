package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"brisa/internal/domain/category"
	"brisa/internal/domain/expense"
	"brisa/internal/domain/job"
	"brisa/internal/domain/transaction"
	"brisa/internal/events"
	"brisa/internal/store"
)

// fixture wires the real services, bus and synchronizer over a memory
// store so propagation runs exactly as it does in the server.
type fixture struct {
	store    store.Store
	jobs     *job.Service
	expenses *expense.Service
}

func newFixture(t *testing.T, st store.Store) *fixture {
	t.Helper()
	bus := events.NewBus()
	sync := NewSynchronizer(st, category.NewResolver(st), zerolog.Nop())
	bus.Subscribe(sync.HandleEvent)
	return &fixture{
		store:    st,
		jobs:     job.NewService(st, bus),
		expenses: expense.NewService(st, bus),
	}
}

func (f *fixture) transactionsFor(t *testing.T, ownerID int64) []transaction.Transaction {
	t.Helper()
	data, err := f.store.FindWhere(context.Background(), transaction.Table, store.Filter{
		"owner_id": strconv.FormatInt(ownerID, 10),
	})
	if err != nil {
		t.Fatalf("listing transactions failed: %v", err)
	}
	txs, err := store.Decode[transaction.Transaction](data)
	if err != nil {
		t.Fatalf("decoding transactions failed: %v", err)
	}
	return txs
}

func (f *fixture) categoriesFor(t *testing.T, ownerID int64) []category.Category {
	t.Helper()
	data, err := f.store.FindWhere(context.Background(), category.Table, store.Filter{
		"owner_id": strconv.FormatInt(ownerID, 10),
	})
	if err != nil {
		t.Fatalf("listing categories failed: %v", err)
	}
	cats, err := store.Decode[category.Category](data)
	if err != nil {
		t.Fatalf("decoding categories failed: %v", err)
	}
	return cats
}

func TestJobCompletionCreatesIncomeTransaction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, store.NewMemory())

	j, err := f.jobs.Create(ctx, job.CreateParams{
		OwnerID:     1,
		ClientID:    "c1",
		Amount:      decimal.NewFromFloat(180.00),
		Date:        time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Description: "Deep clean, 2br apartment",
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	// Still in progress, nothing mirrored yet.
	if txs := f.transactionsFor(t, 1); len(txs) != 0 {
		t.Fatalf("expected no transactions before completion, got %d", len(txs))
	}

	completed := job.StatusCompleted
	if _, err := f.jobs.Update(ctx, j.ID, 1, job.UpdateParams{Status: &completed}); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	txs := f.transactionsFor(t, 1)
	if len(txs) != 1 {
		t.Fatalf("expected 1 derived transaction, got %d", len(txs))
	}
	tx := txs[0]
	if tx.Type != transaction.TypeIncome {
		t.Errorf("expected income transaction, got %q", tx.Type)
	}
	if !tx.Amount.Equal(j.Amount) {
		t.Errorf("expected amount %s, got %s", j.Amount, tx.Amount)
	}
	if tx.JobID != j.ID {
		t.Errorf("expected job link %q, got %q", j.ID, tx.JobID)
	}
	if !tx.Derived {
		t.Error("expected transaction to be marked derived")
	}
	if want := "Service rendered — Deep clean, 2br apartment"; tx.Description != want {
		t.Errorf("expected description %q, got %q", want, tx.Description)
	}

	cats := f.categoriesFor(t, 1)
	if len(cats) != 1 || cats[0].Name != category.ServicesRendered {
		t.Fatalf("expected lazily created %q category, got %+v", category.ServicesRendered, cats)
	}
	if tx.CategoryID != cats[0].ID {
		t.Errorf("transaction not linked to resolved category")
	}
}

func TestJobCreatedDirectlyAsCompleted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, store.NewMemory())

	if _, err := f.jobs.Create(ctx, job.CreateParams{
		OwnerID:     1,
		ClientID:    "c1",
		Amount:      decimal.NewFromInt(90),
		Status:      job.StatusCompleted,
		Date:        time.Now().UTC(),
		Description: "One-off window clean",
	}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if txs := f.transactionsFor(t, 1); len(txs) != 1 {
		t.Fatalf("expected 1 derived transaction, got %d", len(txs))
	}
}

func TestCompletedJobEditPatchesTransaction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, store.NewMemory())

	j, err := f.jobs.Create(ctx, job.CreateParams{
		OwnerID:     1,
		ClientID:    "c1",
		Amount:      decimal.NewFromInt(100),
		Status:      job.StatusCompleted,
		Date:        time.Now().UTC(),
		Description: "Office clean",
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	newAmount := decimal.NewFromInt(120)
	if _, err := f.jobs.Update(ctx, j.ID, 1, job.UpdateParams{Amount: &newAmount}); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	txs := f.transactionsFor(t, 1)
	if len(txs) != 1 {
		t.Fatalf("expected the mirror to be patched in place, got %d transactions", len(txs))
	}
	if !txs[0].Amount.Equal(newAmount) {
		t.Errorf("expected patched amount 120, got %s", txs[0].Amount)
	}

	// Re-saving without changes must not duplicate or churn the mirror.
	if _, err := f.jobs.Update(ctx, j.ID, 1, job.UpdateParams{}); err != nil {
		t.Fatalf("no-op Update() failed: %v", err)
	}
	if txs := f.transactionsFor(t, 1); len(txs) != 1 {
		t.Fatalf("expected 1 transaction after no-op update, got %d", len(txs))
	}
}

func TestRevertingCompletionDeletesTransaction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, store.NewMemory())

	j, err := f.jobs.Create(ctx, job.CreateParams{
		OwnerID:     1,
		ClientID:    "c1",
		Amount:      decimal.NewFromInt(75),
		Status:      job.StatusCompleted,
		Date:        time.Now().UTC(),
		Description: "Garage sweep",
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if txs := f.transactionsFor(t, 1); len(txs) != 1 {
		t.Fatalf("expected 1 transaction after completion, got %d", len(txs))
	}

	reverted := job.StatusInProgress
	if _, err := f.jobs.Update(ctx, j.ID, 1, job.UpdateParams{Status: &reverted}); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if txs := f.transactionsFor(t, 1); len(txs) != 0 {
		t.Fatalf("expected mirror deleted on revert, got %d transactions", len(txs))
	}

	// Reverting again is a no-op, not an error.
	canceled := job.StatusCanceled
	if _, err := f.jobs.Update(ctx, j.ID, 1, job.UpdateParams{Status: &canceled}); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if txs := f.transactionsFor(t, 1); len(txs) != 0 {
		t.Fatalf("expected no transactions, got %d", len(txs))
	}
}

func TestExpensePropagation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, store.NewMemory())

	j, err := f.jobs.Create(ctx, job.CreateParams{
		OwnerID:     1,
		ClientID:    "c1",
		Amount:      decimal.NewFromInt(200),
		Date:        time.Now().UTC(),
		Description: "Post-renovation clean",
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	e, err := f.expenses.Create(ctx, expense.CreateParams{
		JobID:       j.ID,
		OwnerID:     1,
		Amount:      decimal.NewFromFloat(18.40),
		Date:        time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
		Description: "degreaser",
	})
	if err != nil {
		t.Fatalf("expense Create() failed: %v", err)
	}

	txs := f.transactionsFor(t, 1)
	if len(txs) != 1 {
		t.Fatalf("expected 1 derived transaction, got %d", len(txs))
	}
	tx := txs[0]
	if tx.Type != transaction.TypeExpense {
		t.Errorf("expected expense transaction, got %q", tx.Type)
	}
	if tx.ExpenseID != e.ID {
		t.Errorf("expected expense link %q, got %q", e.ID, tx.ExpenseID)
	}
	if want := "Additional expense: degreaser"; tx.Description != want {
		t.Errorf("expected description %q, got %q", want, tx.Description)
	}

	cats := f.categoriesFor(t, 1)
	if len(cats) != 1 || cats[0].Name != category.AdditionalExpenses {
		t.Fatalf("expected lazily created %q category, got %+v", category.AdditionalExpenses, cats)
	}

	newAmount := decimal.NewFromFloat(22.00)
	if _, err := f.expenses.Update(ctx, e.ID, 1, expense.UpdateParams{Amount: &newAmount}); err != nil {
		t.Fatalf("expense Update() failed: %v", err)
	}
	txs = f.transactionsFor(t, 1)
	if len(txs) != 1 || !txs[0].Amount.Equal(newAmount) {
		t.Fatalf("expected patched mirror with amount 22, got %+v", txs)
	}

	if err := f.expenses.Delete(ctx, e.ID, 1); err != nil {
		t.Fatalf("expense Delete() failed: %v", err)
	}
	if txs := f.transactionsFor(t, 1); len(txs) != 0 {
		t.Fatalf("expected mirror deleted with expense, got %d transactions", len(txs))
	}
}

func TestEditAfterLostMirrorDoesNotResurrect(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, store.NewMemory())

	j, err := f.jobs.Create(ctx, job.CreateParams{
		OwnerID:     1,
		ClientID:    "c1",
		Amount:      decimal.NewFromInt(80),
		Status:      job.StatusCompleted,
		Date:        time.Now().UTC(),
		Description: "Balcony clean",
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	// Lose the mirror out of band.
	for _, tx := range f.transactionsFor(t, 1) {
		if _, err := f.store.Delete(ctx, transaction.Table, tx.ID); err != nil {
			t.Fatalf("deleting mirror failed: %v", err)
		}
	}

	// An edit while staying completed never creates a mirror.
	newAmount := decimal.NewFromInt(95)
	if _, err := f.jobs.Update(ctx, j.ID, 1, job.UpdateParams{Amount: &newAmount}); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if txs := f.transactionsFor(t, 1); len(txs) != 0 {
		t.Fatalf("expected no resurrection, got %d transactions", len(txs))
	}
}

func TestExpenseUpdateWithLostMirror(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, store.NewMemory())

	j, err := f.jobs.Create(ctx, job.CreateParams{
		OwnerID:  1,
		ClientID: "c1",
		Amount:   decimal.NewFromInt(50),
		Date:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	e, err := f.expenses.Create(ctx, expense.CreateParams{
		JobID:       j.ID,
		OwnerID:     1,
		Amount:      decimal.NewFromInt(10),
		Date:        time.Now().UTC(),
		Description: "gloves",
	})
	if err != nil {
		t.Fatalf("expense Create() failed: %v", err)
	}

	// Simulate a propagation lost before this update.
	for _, tx := range f.transactionsFor(t, 1) {
		if _, err := f.store.Delete(ctx, transaction.Table, tx.ID); err != nil {
			t.Fatalf("deleting mirror failed: %v", err)
		}
	}

	// An update against a lost mirror is a quiet no-op; deletion too.
	desc := "nitrile gloves"
	if _, err := f.expenses.Update(ctx, e.ID, 1, expense.UpdateParams{Description: &desc}); err != nil {
		t.Fatalf("expense Update() failed: %v", err)
	}
	if txs := f.transactionsFor(t, 1); len(txs) != 0 {
		t.Fatalf("expected no resurrection on update, got %d transactions", len(txs))
	}

	if err := f.expenses.Delete(ctx, e.ID, 1); err != nil {
		t.Fatalf("expense Delete() failed: %v", err)
	}
}

// brokenLedgerStore fails every write to the transactions table while
// letting the primary tables work normally.
type brokenLedgerStore struct {
	store.Store
}

var errLedgerDown = errors.New("transactions table unavailable")

func (b *brokenLedgerStore) Create(ctx context.Context, table string, record any) (json.RawMessage, error) {
	if table == transaction.Table {
		return nil, errLedgerDown
	}
	return b.Store.Create(ctx, table, record)
}

func TestPropagationFailureDoesNotFailPrimaryWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &brokenLedgerStore{Store: store.NewMemory()})

	j, err := f.jobs.Create(ctx, job.CreateParams{
		OwnerID:     1,
		ClientID:    "c1",
		Amount:      decimal.NewFromInt(60),
		Status:      job.StatusCompleted,
		Date:        time.Now().UTC(),
		Description: "Stairwell clean",
	})
	if err != nil {
		t.Fatalf("job creation must survive a ledger failure, got %v", err)
	}

	// Job persisted even though the mirror was not.
	if _, err := f.jobs.Get(ctx, j.ID, 1); err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if txs := f.transactionsFor(t, 1); len(txs) != 0 {
		t.Fatalf("expected no mirror after failed propagation, got %d", len(txs))
	}
}

// Two propagations for the same owner may race on the lazy creation of
// the well-known category. Both must succeed; a duplicate category is
// tolerated, a failed propagation is not.
func TestConcurrentExpenseCreation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, store.NewMemory())

	j, err := f.jobs.Create(ctx, job.CreateParams{
		OwnerID:     1,
		ClientID:    "c1",
		Amount:      decimal.NewFromInt(300),
		Date:        time.Now().UTC(),
		Description: "Move-out clean",
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := f.expenses.Create(ctx, expense.CreateParams{
				JobID:       j.ID,
				OwnerID:     1,
				Amount:      decimal.NewFromInt(int64(n + 1)),
				Date:        time.Now().UTC(),
				Description: "supplies " + strconv.Itoa(n),
			}); err != nil {
				t.Errorf("concurrent expense Create() failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	txs := f.transactionsFor(t, 1)
	if len(txs) != workers {
		t.Fatalf("expected %d derived transactions, got %d", workers, len(txs))
	}

	cats := f.categoriesFor(t, 1)
	if len(cats) == 0 {
		t.Fatal("expected at least one lazily created category")
	}
	catIDs := make(map[string]bool, len(cats))
	for _, c := range cats {
		if c.Name != category.AdditionalExpenses {
			t.Errorf("unexpected category %q", c.Name)
		}
		catIDs[c.ID] = true
	}
	for _, tx := range txs {
		if !catIDs[tx.CategoryID] {
			t.Errorf("transaction %s linked to unknown category %q", tx.ID, tx.CategoryID)
		}
	}
}

// countingStore records how many calls reach the underlying store.
type countingStore struct {
	store.Store
	calls int
}

func (c *countingStore) GetByID(ctx context.Context, table, id string) (json.RawMessage, error) {
	c.calls++
	return c.Store.GetByID(ctx, table, id)
}

func (c *countingStore) Create(ctx context.Context, table string, record any) (json.RawMessage, error) {
	c.calls++
	return c.Store.Create(ctx, table, record)
}

func (c *countingStore) FindWhere(ctx context.Context, table string, filter store.Filter) (json.RawMessage, error) {
	c.calls++
	return c.Store.FindWhere(ctx, table, filter)
}

func TestMalformedEventsRejectedBeforeStoreCalls(t *testing.T) {
	ctx := context.Background()
	st := &countingStore{Store: store.NewMemory()}
	s := NewSynchronizer(st, category.NewResolver(st), zerolog.Nop())

	noOwner := job.Job{ID: "j1", Status: job.StatusCompleted, Amount: decimal.NewFromInt(10)}
	if err := s.OnJobStatusChanged(ctx, noOwner, job.StatusInProgress); err == nil {
		t.Error("expected error for job event without owner")
	}
	noID := job.Job{OwnerID: 1, Status: job.StatusCompleted, Amount: decimal.NewFromInt(10)}
	if err := s.OnJobStatusChanged(ctx, noID, job.StatusInProgress); err == nil {
		t.Error("expected error for job event without id")
	}

	e := expense.Expense{ID: "e1", Amount: decimal.NewFromInt(5)}
	if err := s.OnExpenseCreated(ctx, e); err == nil {
		t.Error("expected error for expense event without owner")
	}
	if err := s.OnExpenseUpdated(ctx, e); err == nil {
		t.Error("expected error for expense event without owner")
	}
	if err := s.OnExpenseDeleted(ctx, e); err == nil {
		t.Error("expected error for expense event without owner")
	}

	if st.calls != 0 {
		t.Errorf("expected rejection before any store call, got %d calls", st.calls)
	}
}

func TestOwnersDoNotShareWellKnownCategories(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, store.NewMemory())

	for _, owner := range []int64{1, 2} {
		if _, err := f.jobs.Create(ctx, job.CreateParams{
			OwnerID:     owner,
			ClientID:    "c1",
			Amount:      decimal.NewFromInt(40),
			Status:      job.StatusCompleted,
			Date:        time.Now().UTC(),
			Description: "Weekly clean",
		}); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}

	first := f.categoriesFor(t, 1)
	second := f.categoriesFor(t, 2)
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected one category per owner, got %d and %d", len(first), len(second))
	}
	if first[0].ID == second[0].ID {
		t.Error("owners must not share category records")
	}
}
