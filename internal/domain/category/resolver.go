package category

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"brisa/internal/store"
)

// Resolver resolves well-known categories for the ledger synchronizer,
// creating them on first use for an owner.
type Resolver struct {
	store store.Store
}

func NewResolver(st store.Store) *Resolver {
	return &Resolver{store: st}
}

// Resolve returns the ID of the owner's category with the given name
// and kind, creating it when absent.
//
// Lookup and create are two separate store calls with no uniqueness
// constraint behind them: two concurrent resolves for the same owner
// can both miss and both create, leaving two categories with the same
// name. Callers treat that as acceptable duplication.
func (r *Resolver) Resolve(ctx context.Context, ownerID int64, name string, kind Type) (string, error) {
	if ownerID <= 0 {
		return "", fmt.Errorf("valid owner ID is required")
	}
	if name == "" {
		return "", fmt.Errorf("category name is required")
	}
	if !IsValidType(kind) {
		return "", ErrInvalidType
	}

	data, err := r.store.FindWhere(ctx, Table, store.Filter{
		"owner_id": strconv.FormatInt(ownerID, 10),
		"type":     string(kind),
	})
	if err != nil {
		return "", fmt.Errorf("failed to list categories: %w", err)
	}

	existing, err := store.Decode[Category](data)
	if err != nil {
		return "", err
	}
	for _, c := range existing {
		if c.Name == name {
			return c.ID, nil
		}
	}

	created := Category{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Name:      name,
		Type:      kind,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.store.Create(ctx, Table, created); err != nil {
		return "", fmt.Errorf("failed to create category %q: %w", name, err)
	}
	return created.ID, nil
}
