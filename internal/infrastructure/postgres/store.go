package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"brisa/internal/store"
)

// Record tables. Each table holds one jsonb document per row:
//
//	CREATE TABLE <name> (
//	    id   text PRIMARY KEY,
//	    data jsonb NOT NULL
//	);
//
// The document carries the id as well, so rows decode straight into
// domain models.
var knownTables = map[string]struct{}{
	store.TableClients:      {},
	store.TableJobs:         {},
	store.TableExpenses:     {},
	store.TableTransactions: {},
	store.TableCategories:   {},
	store.TableDeviceTokens: {},
}

// Store implements store.Store on Postgres using jsonb documents.
type Store struct {
	db *DB
}

func NewStore(db *DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, table string, record any) (json.RawMessage, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}

	doc, err := marshalDoc(record)
	if err != nil {
		return nil, err
	}

	id, _ := doc["id"].(string)
	if id == "" {
		id = uuid.New().String()
		doc["id"] = id
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, data) VALUES ($1, $2) RETURNING data`, table)

	var stored []byte
	if err := s.db.QueryRowContext(ctx, query, id, data).Scan(&stored); err != nil {
		return nil, fmt.Errorf("failed to create %s row: %w", table, err)
	}
	return stored, nil
}

func (s *Store) GetByID(ctx context.Context, table, id string) (json.RawMessage, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, store.ErrInvalidID
	}

	query := fmt.Sprintf(`SELECT data FROM %s WHERE id = $1`, table)

	var data []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s row: %w", table, err)
	}
	return data, nil
}

func (s *Store) Update(ctx context.Context, table, id string, patch map[string]any) (json.RawMessage, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, store.ErrInvalidID
	}

	patchJSON, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal patch: %w", err)
	}

	query := fmt.Sprintf(`UPDATE %s SET data = data || $2::jsonb WHERE id = $1 RETURNING data`, table)

	var data []byte
	err = s.db.QueryRowContext(ctx, query, id, patchJSON).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update %s row: %w", table, err)
	}
	return data, nil
}

func (s *Store) Delete(ctx context.Context, table, id string) (bool, error) {
	if err := checkTable(table); err != nil {
		return false, err
	}
	if id == "" {
		return false, store.ErrInvalidID
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table)

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s row: %w", table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

func (s *Store) FindWhere(ctx context.Context, table string, filter store.Filter) (json.RawMessage, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}

	where, args, err := buildWhere(filter)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT data FROM %s%s ORDER BY id`, table, where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s rows: %w", table, err)
	}
	defer rows.Close()

	docs := make([]json.RawMessage, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		docs = append(docs, data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", table, err)
	}

	return json.Marshal(docs)
}

func checkTable(table string) error {
	if _, ok := knownTables[table]; !ok {
		return fmt.Errorf("%w: %q", store.ErrInvalidTable, table)
	}
	return nil
}

// buildWhere renders filter conditions as `data->>'key' = $n`. Keys are
// sorted for stable statements; only identifier characters are allowed.
func buildWhere(filter store.Filter) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		if !isIdentifier(k) {
			return "", nil, fmt.Errorf("invalid filter key %q", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var conds []string
	var args []any
	for i, k := range keys {
		conds = append(conds, fmt.Sprintf("data->>'%s' = $%d", k, i+1))
		args = append(args, filter[k])
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func marshalDoc(record any) (map[string]any, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("record must be a JSON object: %w", err)
	}
	return doc, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !(c == '_' || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}
