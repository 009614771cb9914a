package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store used by tests and the "memory" driver
// for local development. Rows are kept as decoded JSON objects so the
// text-matching semantics of FindWhere mirror the Postgres backend.
type Memory struct {
	mu     sync.RWMutex
	tables map[string]map[string]map[string]any
}

func NewMemory() *Memory {
	return &Memory{tables: make(map[string]map[string]map[string]any)}
}

// table returns the named table for reading. Absent tables stay nil;
// reads and deletes on a nil map are safe, so read paths holding only
// the read lock never mutate the table map.
func (m *Memory) table(name string) map[string]map[string]any {
	return m.tables[name]
}

// ensureTable lazily creates a table. Callers must hold the write lock.
func (m *Memory) ensureTable(name string) map[string]map[string]any {
	t, ok := m.tables[name]
	if !ok {
		t = make(map[string]map[string]any)
		m.tables[name] = t
	}
	return t
}

func (m *Memory) Create(ctx context.Context, table string, record any) (json.RawMessage, error) {
	row, err := toRow(record)
	if err != nil {
		return nil, err
	}

	id, _ := row["id"].(string)
	if id == "" {
		id = uuid.New().String()
		row["id"] = id
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.ensureTable(table)
	if _, exists := t[id]; exists {
		return nil, fmt.Errorf("duplicate id %q in table %q", id, table)
	}
	t[id] = row

	return json.Marshal(row)
}

func (m *Memory) GetByID(ctx context.Context, table, id string) (json.RawMessage, error) {
	if id == "" {
		return nil, ErrInvalidID
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.table(table)[id]
	if !ok {
		return nil, nil
	}
	return json.Marshal(row)
}

func (m *Memory) Update(ctx context.Context, table, id string, patch map[string]any) (json.RawMessage, error) {
	if id == "" {
		return nil, ErrInvalidID
	}

	normalized, err := toRow(patch)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.table(table)[id]
	if !ok {
		return nil, nil
	}
	for k, v := range normalized {
		row[k] = v
	}
	return json.Marshal(row)
}

func (m *Memory) Delete(ctx context.Context, table, id string) (bool, error) {
	if id == "" {
		return false, ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.table(table)
	if _, ok := t[id]; !ok {
		return false, nil
	}
	delete(t, id)
	return true, nil
}

func (m *Memory) FindWhere(ctx context.Context, table string, filter Filter) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]map[string]any, 0)
	for _, row := range m.table(table) {
		if rowMatches(row, filter) {
			matched = append(matched, row)
		}
	}

	// Deterministic order for tests.
	sort.Slice(matched, func(i, j int) bool {
		a, _ := matched[i]["id"].(string)
		b, _ := matched[j]["id"].(string)
		return a < b
	})

	return json.Marshal(matched)
}

func rowMatches(row map[string]any, filter Filter) bool {
	for key, want := range filter {
		v, ok := row[key]
		if !ok || fieldText(v) != want {
			return false
		}
	}
	return true
}

// fieldText renders a JSON value the way Postgres `->>` does.
func fieldText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		data, _ := json.Marshal(t)
		return string(data)
	}
}

// toRow round-trips a record through JSON so stored rows hold plain
// decoded values regardless of the caller's concrete types.
func toRow(record any) (map[string]any, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	var row map[string]any
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("record must be a JSON object: %w", err)
	}
	return row, nil
}
