// Package postgres stores entities and importer state in PostgreSQL via pgx.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/penyaskito/dashboard-initiative/internal/entity"
)

//go:embed schema.sql
var schemaSQL string

// PoolOptions tunes the connection pool.
type PoolOptions struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Store provides PostgreSQL-backed entity storage and a key_value state table.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Open connects to url, verifies the connection and applies the schema.
func Open(ctx context.Context, url string, opts PoolOptions, logger *slog.Logger) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = opts.MaxConns
	}
	poolConfig.MinConns = opts.MinConns
	if opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	if logger != nil {
		logger.Info("connected to database", "name", poolConfig.ConnConfig.Database)
	}
	return &Store{pool: pool, logger: logger}, nil
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Storage implements entity.Manager.
func (s *Store) Storage(entityType string) (entity.Storage, error) {
	if !slices.Contains(entity.KnownTypes(), entityType) {
		return nil, fmt.Errorf("storage %q: %w", entityType, entity.ErrUnknownEntityType)
	}
	return &storage{pool: s.pool, entityType: entityType}, nil
}

type storage struct {
	pool       *pgxpool.Pool
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

	tx, err := st.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	id := e.ID()
	if e.IsNew() {
		err = tx.QueryRow(ctx,
			`INSERT INTO entities (uuid, entity_type, langcode, label, data)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			e.UUID(), st.entityType, e.Langcode(), e.Label(), data).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert %s: %w", st.entityType, err)
		}
	} else {
		tag, err := tx.Exec(ctx,
			`UPDATE entities SET langcode = $1, label = $2, data = $3, updated_at = now()
			 WHERE id = $4 AND entity_type = $5`,
			e.Langcode(), e.Label(), data, id, st.entityType)
		if err != nil {
			return fmt.Errorf("update %s %d: %w", st.entityType, id, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("update %s %d: %w", st.entityType, id, pgx.ErrNoRows)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM entity_translations WHERE entity_id = $1`, id); err != nil {
		return fmt.Errorf("clear translations of %d: %w", id, err)
	}
	for _, lang := range e.TranslationLanguages() {
		values, _ := e.Translation(lang)
		tdata, err := json.Marshal(values)
		if err != nil {
			return fmt.Errorf("encode %s translation of %d: %w", lang, id, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO entity_translations (entity_id, langcode, data) VALUES ($1, $2, $3)`,
			id, lang, tdata); err != nil {
			return fmt.Errorf("insert %s translation of %d: %w", lang, id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	if e.IsNew() {
		e.AssignID(id)
	}
	return nil
}

// LoadByProperties narrows the query on uuid and label in SQL, then applies
// the full property match in Go.
func (st *storage) LoadByProperties(ctx context.Context, props entity.Properties) ([]*entity.Entity, error) {
	query := `SELECT e.id, e.uuid::text, e.langcode, e.data,
		COALESCE((SELECT jsonb_object_agg(t.langcode, t.data) FROM entity_translations t WHERE t.entity_id = e.id), '{}'::jsonb)
		FROM entities e WHERE e.entity_type = $1`
	args := []any{st.entityType}

	if uuids, ok := props["uuid"]; ok {
		args = append(args, uuids)
		query += fmt.Sprintf(" AND e.uuid::text = ANY($%d)", len(args))
	}
	for _, field := range []string{"name", "title"} {
		if labels, ok := props[field]; ok {
			args = append(args, labels)
			query += fmt.Sprintf(" AND e.label = ANY($%d)", len(args))
		}
	}
	query += " ORDER BY e.id"

	rows, err := st.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", st.entityType, err)
	}
	defer rows.Close()

	var out []*entity.Entity
	for rows.Next() {
		var (
			id             int64
			uuid, langcode string
			data, tdata    []byte
		)
		if err := rows.Scan(&id, &uuid, &langcode, &data, &tdata); err != nil {
			return nil, fmt.Errorf("scan %s: %w", st.entityType, err)
		}
		var values entity.Values
		if err := json.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("decode %s %d: %w", st.entityType, id, err)
		}
		var translations map[string]entity.Values
		if err := json.Unmarshal(tdata, &translations); err != nil {
			return nil, fmt.Errorf("decode translations of %d: %w", id, err)
		}
		e := entity.Restore(st.entityType, id, uuid, langcode, values, translations)
		if e.Matches(props) {
			out = append(out, e)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", st.entityType, err)
	}
	return out, nil
}

func (st *storage) Delete(ctx context.Context, entities []*entity.Entity) error {
	if len(entities) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(entities))
	for _, e := range entities {
		ids = append(ids, e.ID())
	}
	if _, err := st.pool.Exec(ctx,
		`DELETE FROM entities WHERE entity_type = $1 AND id = ANY($2)`, st.entityType, ids); err != nil {
		return fmt.Errorf("delete %s: %w", st.entityType, err)
	}
	return nil
}

// Get implements state.Store on the key_value table.
func (s *Store) Get(ctx context.Context, key string, dest any) (bool, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM key_value WHERE name = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(value, dest); err != nil {
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
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO key_value (name, value) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value`,
		key, data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete implements state.Store on the key_value table.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM key_value WHERE name = $1`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
