package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Table names used across the application.
const (
	TableClients      = "clients"
	TableJobs         = "jobs"
	TableExpenses     = "expenses"
	TableTransactions = "transactions"
	TableCategories   = "categories"
	TableDeviceTokens = "device_tokens"
)

var (
	ErrInvalidTable = errors.New("invalid table name")
	ErrInvalidID    = errors.New("record ID is required")
)

// Filter is a set of equality conditions on record fields.
// Keys are JSON field names; values are compared as text, the same way
// Postgres `data->>key` extraction behaves.
type Filter map[string]string

// Store is the generic record store every domain service and the
// derived-record synchronizer talk to. Implementations are keyed by
// table name and return raw JSON; callers decode into their own models.
//
// Owner scoping is the caller's responsibility: lookups that must be
// owner-scoped include an "owner_id" filter key.
type Store interface {
	// Create inserts a record and returns the stored row.
	Create(ctx context.Context, table string, record any) (json.RawMessage, error)

	// GetByID returns the row with the given ID, or nil when absent.
	GetByID(ctx context.Context, table, id string) (json.RawMessage, error)

	// Update applies a partial patch to the row with the given ID and
	// returns the updated row, or nil when no row matched.
	Update(ctx context.Context, table, id string, patch map[string]any) (json.RawMessage, error)

	// Delete removes the row with the given ID. Returns false when no
	// row matched.
	Delete(ctx context.Context, table, id string) (bool, error)

	// FindWhere returns a JSON array of rows matching all filter
	// conditions.
	FindWhere(ctx context.Context, table string, filter Filter) (json.RawMessage, error)
}

// Decode unmarshals a JSON array of rows into a typed slice.
func Decode[T any](data json.RawMessage) ([]T, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode rows: %w", err)
	}
	return out, nil
}

// DecodeOne unmarshals a single row. Returns nil when data is empty,
// matching the nil-when-absent contract of GetByID and Update.
func DecodeOne[T any](data json.RawMessage) (*T, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode row: %w", err)
	}
	return &out, nil
}
