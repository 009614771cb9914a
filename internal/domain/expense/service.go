package expense

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"brisa/internal/domain/job"
	"brisa/internal/events"
	"brisa/internal/store"
)

// Service contains the business logic for expense operations. Writes
// publish post-commit events; the expense mutation itself never fails
// because of a subscriber.
type Service struct {
	store  store.Store
	events events.Publisher
}

func NewService(st store.Store, publisher events.Publisher) *Service {
	return &Service{store: st, events: publisher}
}

// Create records an expense against one of the owner's jobs.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Expense, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// The expense must hang off a job the owner can see.
	owning, err := s.jobFor(ctx, params.JobID)
	if err != nil {
		return nil, err
	}
	if owning == nil {
		return nil, fmt.Errorf("job %q not found", params.JobID)
	}
	if owning.OwnerID != params.OwnerID {
		return nil, ErrForbidden
	}

	now := time.Now().UTC()
	e := Expense{
		ID:          uuid.New().String(),
		JobID:       params.JobID,
		OwnerID:     params.OwnerID,
		CategoryID:  params.CategoryID,
		Amount:      params.Amount,
		Date:        params.Date,
		Description: params.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	data, err := s.store.Create(ctx, Table, e)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	created, err := store.DecodeOne[Expense](data)
	if err != nil {
		return nil, err
	}
	if created == nil {
		created = &e
	}

	s.events.Publish(ctx, CreatedEvent{Expense: *created})
	return created, nil
}

// Get returns one expense after verifying ownership.
func (s *Service) Get(ctx context.Context, id string, ownerID int64) (*Expense, error) {
	data, err := s.store.GetByID(ctx, Table, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	e, err := store.DecodeOne[Expense](data)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}
	if e.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return e, nil
}

// List returns the owner's expenses, optionally narrowed to one job.
func (s *Service) List(ctx context.Context, ownerID int64, jobID string) ([]Expense, error) {
	if ownerID <= 0 {
		return nil, fmt.Errorf("valid owner ID is required")
	}

	filter := store.Filter{"owner_id": strconv.FormatInt(ownerID, 10)}
	if jobID != "" {
		filter["job_id"] = jobID
	}

	data, err := s.store.FindWhere(ctx, Table, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return store.Decode[Expense](data)
}

// Update applies changes to an expense and publishes the new state.
func (s *Service) Update(ctx context.Context, id string, ownerID int64, params UpdateParams) (*Expense, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.Get(ctx, id, ownerID); err != nil {
		return nil, err
	}

	patch := map[string]any{"updated_at": time.Now().UTC()}
	if params.CategoryID != nil {
		patch["category_id"] = *params.CategoryID
	}
	if params.Amount != nil {
		patch["amount"] = *params.Amount
	}
	if params.Date != nil {
		patch["date"] = *params.Date
	}
	if params.Description != nil {
		patch["description"] = *params.Description
	}

	data, err := s.store.Update(ctx, Table, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	updated, err := store.DecodeOne[Expense](data)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrExpenseNotFound
	}

	s.events.Publish(ctx, UpdatedEvent{Expense: *updated})
	return updated, nil
}

// Delete removes an expense and publishes its last state so the
// derived transaction can be cleaned up.
func (s *Service) Delete(ctx context.Context, id string, ownerID int64) error {
	existing, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return err
	}

	if _, err := s.store.Delete(ctx, Table, id); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	s.events.Publish(ctx, DeletedEvent{Expense: *existing})
	return nil
}

func (s *Service) jobFor(ctx context.Context, jobID string) (*job.Job, error) {
	data, err := s.store.GetByID(ctx, job.Table, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up job: %w", err)
	}
	return store.DecodeOne[job.Job](data)
}
