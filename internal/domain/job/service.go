package job

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"brisa/internal/events"
	"brisa/internal/store"
)

// Service contains the business logic for job operations. Every
// persisted write publishes a StatusChangedEvent after the store call
// succeeds; subscribers (the ledger synchronizer, notifications) run
// within the same request but can never fail the job mutation.
type Service struct {
	store  store.Store
	events events.Publisher
}

func NewService(st store.Store, publisher events.Publisher) *Service {
	return &Service{store: st, events: publisher}
}

// Create creates a job in any status. Creating directly as completed
// counts as a transition into completed for subscribers.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Job, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	status := params.Status
	if status == "" {
		status = StatusInProgress
	}

	now := time.Now().UTC()
	j := Job{
		ID:          uuid.New().String(),
		OwnerID:     params.OwnerID,
		ClientID:    params.ClientID,
		Amount:      params.Amount,
		Status:      status,
		Date:        params.Date,
		Description: params.Description,
		Location:    params.Location,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	data, err := s.store.Create(ctx, Table, j)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	created, err := store.DecodeOne[Job](data)
	if err != nil {
		return nil, err
	}
	if created == nil {
		created = &j
	}

	s.events.Publish(ctx, StatusChangedEvent{Job: *created, Previous: ""})
	return created, nil
}

// Get returns one job after verifying ownership.
func (s *Service) Get(ctx context.Context, id string, ownerID int64) (*Job, error) {
	data, err := s.store.GetByID(ctx, Table, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	j, err := store.DecodeOne[Job](data)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, ErrJobNotFound
	}
	if j.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return j, nil
}

// List returns all jobs for an owner, optionally filtered by status.
func (s *Service) List(ctx context.Context, ownerID int64, status Status) ([]Job, error) {
	if ownerID <= 0 {
		return nil, fmt.Errorf("valid owner ID is required")
	}

	filter := store.Filter{"owner_id": strconv.FormatInt(ownerID, 10)}
	if status != "" {
		if !IsValidStatus(status) {
			return nil, ErrInvalidStatus
		}
		filter["status"] = string(status)
	}

	data, err := s.store.FindWhere(ctx, Table, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return store.Decode[Job](data)
}

// Update applies changes to a job and publishes the transition. The
// previous status travels on the event so subscribers can tell a real
// transition from an in-place edit.
func (s *Service) Update(ctx context.Context, id string, ownerID int64, params UpdateParams) (*Job, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	patch := map[string]any{"updated_at": time.Now().UTC()}
	if params.ClientID != nil {
		patch["client_id"] = *params.ClientID
	}
	if params.Amount != nil {
		patch["amount"] = *params.Amount
	}
	if params.Status != nil {
		patch["status"] = *params.Status
	}
	if params.Date != nil {
		patch["date"] = *params.Date
	}
	if params.Description != nil {
		patch["description"] = *params.Description
	}
	if params.Location != nil {
		patch["location"] = *params.Location
	}

	data, err := s.store.Update(ctx, Table, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	updated, err := store.DecodeOne[Job](data)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrJobNotFound
	}

	s.events.Publish(ctx, StatusChangedEvent{Job: *updated, Previous: existing.Status})
	return updated, nil
}

// Delete removes a job after verifying ownership. Derived transactions
// are not touched here; only status transitions drive the ledger.
func (s *Service) Delete(ctx context.Context, id string, ownerID int64) error {
	if _, err := s.Get(ctx, id, ownerID); err != nil {
		return err
	}

	if _, err := s.store.Delete(ctx, Table, id); err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}
