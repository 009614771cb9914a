package expense

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"brisa/internal/domain/job"
	"brisa/internal/events"
	"brisa/internal/store"
)

func seedJob(t *testing.T, st store.Store, ownerID int64) job.Job {
	t.Helper()
	jobs := job.NewService(st, events.NewBus())
	j, err := jobs.Create(context.Background(), job.CreateParams{
		OwnerID:  ownerID,
		ClientID: "c1",
		Amount:   decimal.NewFromInt(200),
		Date:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seeding job failed: %v", err)
	}
	return *j
}

func TestCreateExpense(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	bus := events.NewBus()

	var captured []any
	bus.Subscribe(func(ctx context.Context, event any) {
		captured = append(captured, event)
	})

	owned := seedJob(t, st, 1)
	svc := NewService(st, bus)

	tests := []struct {
		name    string
		params  CreateParams
		wantErr bool
	}{
		{
			name: "Success",
			params: CreateParams{
				JobID:       owned.ID,
				OwnerID:     1,
				Amount:      decimal.NewFromFloat(35.50),
				Date:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
				Description: "Extra cleaning supplies",
			},
		},
		{
			name: "Unknown job",
			params: CreateParams{
				JobID:   "missing",
				OwnerID: 1,
				Amount:  decimal.NewFromInt(5),
				Date:    time.Now(),
			},
			wantErr: true,
		},
		{
			name: "Foreign job",
			params: CreateParams{
				JobID:   owned.ID,
				OwnerID: 2,
				Amount:  decimal.NewFromInt(5),
				Date:    time.Now(),
			},
			wantErr: true,
		},
		{
			name: "Negative amount",
			params: CreateParams{
				JobID:   owned.ID,
				OwnerID: 1,
				Amount:  decimal.NewFromInt(-1),
				Date:    time.Now(),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := svc.Create(ctx, tt.params)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Create() failed: %v", err)
			}
			if e.ID == "" {
				t.Error("expected generated expense ID")
			}
		})
	}

	if len(captured) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(captured))
	}
	if _, ok := captured[0].(CreatedEvent); !ok {
		t.Fatalf("unexpected event type %T", captured[0])
	}
}

func TestExpenseLifecyclePublishesEvents(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	bus := events.NewBus()

	var captured []any
	bus.Subscribe(func(ctx context.Context, event any) {
		captured = append(captured, event)
	})

	owned := seedJob(t, st, 1)
	svc := NewService(st, bus)

	e, err := svc.Create(ctx, CreateParams{
		JobID:       owned.ID,
		OwnerID:     1,
		Amount:      decimal.NewFromInt(20),
		Date:        time.Now().UTC(),
		Description: "Parking",
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	newAmount := decimal.NewFromInt(25)
	updated, err := svc.Update(ctx, e.ID, 1, UpdateParams{Amount: &newAmount})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if !updated.Amount.Equal(newAmount) {
		t.Errorf("expected amount 25, got %s", updated.Amount)
	}

	if err := svc.Delete(ctx, e.ID, 1); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	if len(captured) != 3 {
		t.Fatalf("expected 3 events, got %d", len(captured))
	}
	if _, ok := captured[1].(UpdatedEvent); !ok {
		t.Errorf("expected UpdatedEvent, got %T", captured[1])
	}
	del, ok := captured[2].(DeletedEvent)
	if !ok {
		t.Fatalf("expected DeletedEvent, got %T", captured[2])
	}
	if del.Expense.ID != e.ID {
		t.Errorf("deleted event carries wrong expense ID %q", del.Expense.ID)
	}

	if _, err := svc.Get(ctx, e.ID, 1); err != ErrExpenseNotFound {
		t.Errorf("expected ErrExpenseNotFound after delete, got %v", err)
	}
}

func TestListExpensesByJob(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := NewService(st, events.NewBus())

	first := seedJob(t, st, 1)
	second := seedJob(t, st, 1)

	for _, jobID := range []string{first.ID, first.ID, second.ID} {
		if _, err := svc.Create(ctx, CreateParams{
			JobID:   jobID,
			OwnerID: 1,
			Amount:  decimal.NewFromInt(10),
			Date:    time.Now().UTC(),
		}); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}

	all, err := svc.List(ctx, 1, "")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 expenses, got %d", len(all))
	}

	scoped, err := svc.List(ctx, 1, first.ID)
	if err != nil {
		t.Fatalf("List(job) failed: %v", err)
	}
	if len(scoped) != 2 {
		t.Errorf("expected 2 expenses on first job, got %d", len(scoped))
	}
}
