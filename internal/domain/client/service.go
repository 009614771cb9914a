package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"brisa/internal/store"
)

// Service contains the business logic for the client book.
type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Client, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c := Client{
		ID:        uuid.New().String(),
		OwnerID:   params.OwnerID,
		Name:      params.Name,
		Phone:     params.Phone,
		Email:     params.Email,
		Address:   params.Address,
		Notes:     params.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	data, err := s.store.Create(ctx, Table, c)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	created, err := store.DecodeOne[Client](data)
	if err != nil {
		return nil, err
	}
	if created == nil {
		created = &c
	}
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string, ownerID int64) (*Client, error) {
	data, err := s.store.GetByID(ctx, Table, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	c, err := store.DecodeOne[Client](data)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrClientNotFound
	}
	if c.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, ownerID int64) ([]Client, error) {
	if ownerID <= 0 {
		return nil, fmt.Errorf("valid owner ID is required")
	}

	data, err := s.store.FindWhere(ctx, Table, store.Filter{
		"owner_id": strconv.FormatInt(ownerID, 10),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return store.Decode[Client](data)
}

func (s *Service) Update(ctx context.Context, id string, ownerID int64, params UpdateParams) (*Client, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.Get(ctx, id, ownerID); err != nil {
		return nil, err
	}

	patch := map[string]any{"updated_at": time.Now().UTC()}
	if params.Name != nil {
		patch["name"] = *params.Name
	}
	if params.Phone != nil {
		patch["phone"] = *params.Phone
	}
	if params.Email != nil {
		patch["email"] = *params.Email
	}
	if params.Address != nil {
		patch["address"] = *params.Address
	}
	if params.Notes != nil {
		patch["notes"] = *params.Notes
	}

	data, err := s.store.Update(ctx, Table, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	updated, err := store.DecodeOne[Client](data)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrClientNotFound
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string, ownerID int64) error {
	if _, err := s.Get(ctx, id, ownerID); err != nil {
		return err
	}

	if _, err := s.store.Delete(ctx, Table, id); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}
