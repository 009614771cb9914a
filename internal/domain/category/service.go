package category

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"brisa/internal/store"
)

// Service contains the business logic for category management.
type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Create creates a new category for an owner.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Category, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	c := Category{
		ID:        uuid.New().String(),
		OwnerID:   params.OwnerID,
		Name:      params.Name,
		Type:      params.Type,
		CreatedAt: time.Now().UTC(),
	}

	data, err := s.store.Create(ctx, Table, c)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	created, err := store.DecodeOne[Category](data)
	if err != nil {
		return nil, err
	}
	if created == nil {
		created = &c
	}
	return created, nil
}

// List returns all categories for an owner.
func (s *Service) List(ctx context.Context, ownerID int64) ([]Category, error) {
	if ownerID <= 0 {
		return nil, fmt.Errorf("valid owner ID is required")
	}

	data, err := s.store.FindWhere(ctx, Table, store.Filter{
		"owner_id": strconv.FormatInt(ownerID, 10),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return store.Decode[Category](data)
}

// Get returns one category after verifying ownership.
func (s *Service) Get(ctx context.Context, id string, ownerID int64) (*Category, error) {
	data, err := s.store.GetByID(ctx, Table, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	c, err := store.DecodeOne[Category](data)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCategoryNotFound
	}
	if c.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return c, nil
}

// Delete removes a category after verifying ownership.
func (s *Service) Delete(ctx context.Context, id string, ownerID int64) error {
	if _, err := s.Get(ctx, id, ownerID); err != nil {
		return err
	}

	if _, err := s.store.Delete(ctx, Table, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
