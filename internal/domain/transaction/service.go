package transaction

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"brisa/internal/domain/job"
	"brisa/internal/store"
)

// Service contains the business logic for ledger transactions reached
// through the ledger screens. Entries mirroring a completed job are
// read-only here; the job itself is the only way to change them.
type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Create records a manual transaction. Derived entries are written by
// the ledger synchronizer, never through this path.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tx := Transaction{
		ID:          uuid.New().String(),
		OwnerID:     params.OwnerID,
		Type:        params.Type,
		CategoryID:  params.CategoryID,
		Amount:      params.Amount,
		Date:        params.Date,
		Description: params.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	data, err := s.store.Create(ctx, Table, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	created, err := store.DecodeOne[Transaction](data)
	if err != nil {
		return nil, err
	}
	if created == nil {
		created = &tx
	}
	return created, nil
}

// Get returns one transaction after verifying ownership.
func (s *Service) Get(ctx context.Context, id string, ownerID int64) (*Transaction, error) {
	data, err := s.store.GetByID(ctx, Table, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	tx, err := store.DecodeOne[Transaction](data)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ErrTransactionNotFound
	}
	if tx.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return tx, nil
}

// List returns the owner's transactions, optionally filtered by type.
func (s *Service) List(ctx context.Context, ownerID int64, txType Type) ([]Transaction, error) {
	if ownerID <= 0 {
		return nil, fmt.Errorf("valid owner ID is required")
	}

	filter := store.Filter{"owner_id": strconv.FormatInt(ownerID, 10)}
	if txType != "" {
		if !IsValidType(txType) {
			return nil, ErrInvalidType
		}
		filter["type"] = string(txType)
	}

	data, err := s.store.FindWhere(ctx, Table, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return store.Decode[Transaction](data)
}

// Update applies changes to a transaction unless it is locked behind a
// completed job.
func (s *Service) Update(ctx context.Context, id string, ownerID int64, params UpdateParams) (*Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.guardJobLink(ctx, existing); err != nil {
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
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	updated, err := store.DecodeOne[Transaction](data)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrTransactionNotFound
	}
	return updated, nil
}

// Delete removes a transaction unless it is locked behind a completed
// job.
func (s *Service) Delete(ctx context.Context, id string, ownerID int64) error {
	existing, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if err := s.guardJobLink(ctx, existing); err != nil {
		return err
	}

	if _, err := s.store.Delete(ctx, Table, id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// guardJobLink blocks mutation of entries mirroring a completed job.
// A store failure during the check blocks the mutation too; we never
// allow an edit we could not verify. Expense-linked entries are not
// guarded: the expense screens are free to touch them and manual edits
// are simply overwritten by the next expense update.
func (s *Service) guardJobLink(ctx context.Context, tx *Transaction) error {
	if tx.JobID == "" {
		return nil
	}

	data, err := s.store.GetByID(ctx, job.Table, tx.JobID)
	if err != nil {
		return fmt.Errorf("failed to check linked job: %w", err)
	}

	linked, err := store.DecodeOne[job.Job](data)
	if err != nil {
		return err
	}
	if linked != nil && linked.Status == job.StatusCompleted {
		return ErrLinkedToCompletedJob
	}
	return nil
}
