package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"brisa/internal/store"
)

// Store implements store.Store on Supabase via PostgREST. Tables use
// real columns; JSON field names map one-to-one onto column names.
type Store struct {
	client *supabase.Client
}

func NewStore(url, key string) (*Store, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return &Store{client: client}, nil
}

func (s *Store) Create(ctx context.Context, table string, record any) (json.RawMessage, error) {
	data, _, err := s.client.From(table).
		Insert(record, false, "", "representation", "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to create %s row: %w", table, err)
	}
	return firstRow(data)
}

func (s *Store) GetByID(ctx context.Context, table, id string) (json.RawMessage, error) {
	if id == "" {
		return nil, store.ErrInvalidID
	}

	data, _, err := s.client.From(table).
		Select("*", "", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s row: %w", table, err)
	}
	return firstRow(data)
}

func (s *Store) Update(ctx context.Context, table, id string, patch map[string]any) (json.RawMessage, error) {
	if id == "" {
		return nil, store.ErrInvalidID
	}

	data, _, err := s.client.From(table).
		Update(patch, "representation", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to update %s row: %w", table, err)
	}
	return firstRow(data)
}

func (s *Store) Delete(ctx context.Context, table, id string) (bool, error) {
	if id == "" {
		return false, store.ErrInvalidID
	}

	data, _, err := s.client.From(table).
		Delete("representation", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return false, fmt.Errorf("failed to delete %s row: %w", table, err)
	}

	row, err := firstRow(data)
	if err != nil {
		return false, err
	}
	return row != nil, nil
}

func (s *Store) FindWhere(ctx context.Context, table string, filter store.Filter) (json.RawMessage, error) {
	// Ordered by id like the other backends, so duplicate-row handling
	// picks the same first match everywhere.
	query := s.client.From(table).
		Select("*", "", false).
		Order("id", &postgrest.OrderOpts{Ascending: true})
	for key, value := range filter {
		query = query.Eq(key, value)
	}

	data, _, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to query %s rows: %w", table, err)
	}
	if len(data) == 0 {
		return json.RawMessage("[]"), nil
	}
	return json.RawMessage(data), nil
}

// firstRow unwraps PostgREST's array response into a single row, or
// nil when the array is empty.
func firstRow(data []byte) (json.RawMessage, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}
