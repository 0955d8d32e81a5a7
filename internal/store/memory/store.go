// Package memory keeps entities in process memory. It backs tests and
// dry runs that must not touch a database.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/penyaskito/dashboard-initiative/internal/entity"
)

type record struct {
	uuid         string
	langcode     string
	values       entity.Values
	translations map[string]entity.Values
}

// Store holds every entity type in one map guarded by a mutex.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[string]map[int64]record
}

// New creates an empty store for all known entity types.
func New() *Store {
	s := &Store{rows: make(map[string]map[int64]record)}
	for _, t := range entity.KnownTypes() {
		s.rows[t] = make(map[int64]record)
	}
	return s
}

// Storage implements entity.Manager.
func (s *Store) Storage(entityType string) (entity.Storage, error) {
	if _, ok := s.rows[entityType]; !ok {
		return nil, fmt.Errorf("storage %q: %w", entityType, entity.ErrUnknownEntityType)
	}
	return &storage{store: s, entityType: entityType}, nil
}

// Count returns how many entities of a type are stored.
func (s *Store) Count(entityType string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows[entityType])
}

type storage struct {
	store      *Store
	entityType string
}

func (st *storage) EntityType() string { return st.entityType }

func (st *storage) Create(values entity.Values) (*entity.Entity, error) {
	return entity.Build(st.entityType, values)
}

func (st *storage) Save(ctx context.Context, e *entity.Entity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.Type() != st.entityType {
		return fmt.Errorf("save %s in %s storage: wrong entity type", e.Type(), st.entityType)
	}

	rec := record{
		uuid:         e.UUID(),
		langcode:     e.Langcode(),
		values:       e.Values(),
		translations: make(map[string]entity.Values),
	}
	for _, lang := range e.TranslationLanguages() {
		tr, _ := e.Translation(lang)
		rec.translations[lang] = tr
	}

	s := st.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.IsNew() {
		s.nextID++
		e.AssignID(s.nextID)
	} else if _, ok := s.rows[st.entityType][e.ID()]; !ok {
		return fmt.Errorf("save %s %d: entity no longer exists", st.entityType, e.ID())
	}
	s.rows[st.entityType][e.ID()] = rec
	return nil
}

func (st *storage) LoadByProperties(ctx context.Context, props entity.Properties) ([]*entity.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := st.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.rows[st.entityType]
	var out []*entity.Entity
	for _, id := range slices.Sorted(maps.Keys(rows)) {
		rec := rows[id]
		translations := make(map[string]entity.Values, len(rec.translations))
		for lang, v := range rec.translations {
			translations[lang] = v.Clone()
		}
		e := entity.Restore(st.entityType, id, rec.uuid, rec.langcode, rec.values, translations)
		if e.Matches(props) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (st *storage) Delete(ctx context.Context, entities []*entity.Entity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := st.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entities {
		delete(s.rows[st.entityType], e.ID())
	}
	return nil
}
