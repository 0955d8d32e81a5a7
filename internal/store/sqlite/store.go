// Package sqlite stores entities and importer state in a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/penyaskito/dashboard-initiative/internal/entity"
)

//go:embed schema.sql
var schemaSQL string

// Store provides SQLite-backed entity storage and a key_value state table.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens the database at path and applies the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One connection keeps save transactions strictly serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	if logger != nil {
		logger.Info("sqlite store opened", "path", path)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Storage implements entity.Manager.
func (s *Store) Storage(entityType string) (entity.Storage, error) {
	if !slices.Contains(entity.KnownTypes(), entityType) {
		return nil, fmt.Errorf("storage %q: %w", entityType, entity.ErrUnknownEntityType)
	}
	return &storage{db: s.db, entityType: entityType}, nil
}

type storage struct {
	db         *sql.DB
	entityType string
}

func (st *storage) EntityType() string { return st.entityType }

func (st *storage) Create(values entity.Values) (*entity.Entity, error) {
	return entity.Build(st.entityType, values)
}

func (st *storage) Save(ctx context.Context, e *entity.Entity) error {
	data, err := json.Marshal(e.Values())
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", st.entityType, e.UUID(), err)
	}

	tx, err := st.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if e.IsNew() {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO entities (uuid, entity_type, langcode, label, data) VALUES (?, ?, ?, ?, ?)`,
			e.UUID(), st.entityType, e.Langcode(), e.Label(), string(data))
		if err != nil {
			return fmt.Errorf("insert %s: %w", st.entityType, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert %s: %w", st.entityType, err)
		}
		if err := saveTranslations(ctx, tx, id, e); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		e.AssignID(id)
		return nil
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE entities SET langcode = ?, label = ?, data = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		 WHERE id = ? AND entity_type = ?`,
		e.Langcode(), e.Label(), string(data), e.ID(), st.entityType)
	if err != nil {
		return fmt.Errorf("update %s %d: %w", st.entityType, e.ID(), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update %s %d: %w", st.entityType, e.ID(), sql.ErrNoRows)
	}
	if err := saveTranslations(ctx, tx, e.ID(), e); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func saveTranslations(ctx context.Context, tx *sql.Tx, id int64, e *entity.Entity) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM entity_translations WHERE entity_id = ?`, id); err != nil {
		return fmt.Errorf("clear translations of %d: %w", id, err)
	}
	for _, lang := range e.TranslationLanguages() {
		values, _ := e.Translation(lang)
		data, err := json.Marshal(values)
		if err != nil {
			return fmt.Errorf("encode %s translation of %d: %w", lang, id, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO entity_translations (entity_id, langcode, data) VALUES (?, ?, ?)`,
			id, lang, string(data)); err != nil {
			return fmt.Errorf("insert %s translation of %d: %w", lang, id, err)
		}
	}
	return nil
}

// LoadByProperties narrows the query on uuid and label in SQL, then applies
// the full property match in Go.
func (st *storage) LoadByProperties(ctx context.Context, props entity.Properties) ([]*entity.Entity, error) {
	query := `SELECT id, uuid, langcode, data FROM entities WHERE entity_type = ?`
	args := []any{st.entityType}

	if uuids, ok := props["uuid"]; ok {
		query, args = appendIn(query, args, "uuid", anySlice(uuids))
	}
	for _, field := range []string{"name", "title"} {
		if labels, ok := props[field]; ok {
			query, args = appendIn(query, args, "label", anySlice(labels))
		}
	}
	query += ` ORDER BY id`

	rows, err := st.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", st.entityType, err)
	}

	type row struct {
		id             int64
		uuid, langcode string
		data           string
	}
	var found []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.uuid, &r.langcode, &r.data); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan %s: %w", st.entityType, err)
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate %s: %w", st.entityType, err)
	}
	rows.Close()

	var out []*entity.Entity
	for _, r := range found {
		var values entity.Values
		if err := json.Unmarshal([]byte(r.data), &values); err != nil {
			return nil, fmt.Errorf("decode %s %d: %w", st.entityType, r.id, err)
		}
		translations, err := st.loadTranslations(ctx, r.id)
		if err != nil {
			return nil, err
		}
		e := entity.Restore(st.entityType, r.id, r.uuid, r.langcode, values, translations)
		if e.Matches(props) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (st *storage) loadTranslations(ctx context.Context, id int64) (map[string]entity.Values, error) {
	rows, err := st.db.QueryContext(ctx,
		`SELECT langcode, data FROM entity_translations WHERE entity_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("query translations of %d: %w", id, err)
	}
	defer rows.Close()

	out := make(map[string]entity.Values)
	for rows.Next() {
		var lang, data string
		if err := rows.Scan(&lang, &data); err != nil {
			return nil, fmt.Errorf("scan translation of %d: %w", id, err)
		}
		var values entity.Values
		if err := json.Unmarshal([]byte(data), &values); err != nil {
			return nil, fmt.Errorf("decode %s translation of %d: %w", lang, id, err)
		}
		out[lang] = values
	}
	return out, rows.Err()
}

func (st *storage) Delete(ctx context.Context, entities []*entity.Entity) error {
	if len(entities) == 0 {
		return nil
	}
	ids := make([]any, 0, len(entities))
	for _, e := range entities {
		ids = append(ids, e.ID())
	}
	query, args := appendIn(`DELETE FROM entities WHERE entity_type = ?`, []any{st.entityType}, "id", ids)
	if _, err := st.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s: %w", st.entityType, err)
	}
	return nil
}

func appendIn(query string, args []any, column string, values []any) (string, []any) {
	if len(values) == 0 {
		return query + " AND 0", args
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	return query + " AND " + column + " IN (" + marks + ")", append(args, values...)
}

func anySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// Get implements state.Store on the key_value table.
func (s *Store) Get(ctx context.Context, key string, dest any) (bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM key_value WHERE name = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(value), dest); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Set implements state.Store on the key_value table.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO key_value (name, value) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		key, string(data)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete implements state.Store on the key_value table.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM key_value WHERE name = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
