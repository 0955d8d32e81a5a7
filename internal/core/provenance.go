package core

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/penyaskito/dashboard-initiative/internal/entity"
	"github.com/penyaskito/dashboard-initiative/internal/logging"
	"github.com/penyaskito/dashboard-initiative/internal/state"
)

// Provenance tracks every entity an import created, by uuid, so the import
// can be undone. The registry lives in a state.Store under one key and maps
// uuid to entity type.
type Provenance struct {
	store state.Store
	key   string

	mu sync.Mutex
}

// NewProvenance creates a tracker persisting under key.
func NewProvenance(store state.Store, key string) *Provenance {
	return &Provenance{store: store, key: key}
}

func (p *Provenance) load(ctx context.Context) (map[string]string, error) {
	registry := make(map[string]string)
	if _, err := p.store.Get(ctx, p.key, &registry); err != nil {
		return nil, fmt.Errorf("load provenance: %w", err)
	}
	if registry == nil {
		registry = make(map[string]string)
	}
	return registry, nil
}

// Record merges entries (uuid to entity type) into the registry.
// Entries already present keep their recorded type.
func (p *Provenance) Record(ctx context.Context, entries map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	registry, err := p.load(ctx)
	if err != nil {
		return err
	}
	for uuid, entityType := range entries {
		if _, exists := registry[uuid]; !exists {
			registry[uuid] = entityType
		}
	}
	if err := p.store.Set(ctx, p.key, registry); err != nil {
		return fmt.Errorf("save provenance: %w", err)
	}
	return nil
}

// Tracked returns a copy of the registry.
func (p *Provenance) Tracked(ctx context.Context) (map[string]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.load(ctx)
}

// Counts returns the number of tracked entities per entity type.
func (p *Provenance) Counts(ctx context.Context) (map[string]int, error) {
	registry, err := p.Tracked(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, entityType := range registry {
		counts[entityType]++
	}
	return counts, nil
}

func (p *Provenance) forget(ctx context.Context, uuids []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	registry, err := p.load(ctx)
	if err != nil {
		return err
	}
	for _, uuid := range uuids {
		delete(registry, uuid)
	}
	if len(registry) == 0 {
		err = p.store.Delete(ctx, p.key)
	} else {
		err = p.store.Set(ctx, p.key, registry)
	}
	if err != nil {
		return fmt.Errorf("save provenance: %w", err)
	}
	return nil
}

// DeleteAll deletes every tracked entity, one entity type at a time in
// sorted order. A group's registry entries are dropped only after its delete
// succeeded, so a failed run can be repeated. Entities that no longer exist
// are counted as missing and forgotten.
func (p *Provenance) DeleteAll(ctx context.Context, entities entity.Manager) (DeleteResult, error) {
	result := DeleteResult{Deleted: make(map[string]int)}
	logger := logging.FromContext(ctx)

	registry, err := p.Tracked(ctx)
	if err != nil {
		return result, err
	}
	result.Tracked = len(registry)

	groups := make(map[string][]string)
	for uuid, entityType := range registry {
		groups[entityType] = append(groups[entityType], uuid)
	}

	for _, entityType := range slices.Sorted(maps.Keys(groups)) {
		uuids := groups[entityType]
		slices.Sort(uuids)

		storage, err := entities.Storage(entityType)
		if err != nil {
			return result, fmt.Errorf("delete %s: %w", entityType, err)
		}
		found, err := storage.LoadByProperties(ctx, entity.Properties{"uuid": uuids})
		if err != nil {
			return result, fmt.Errorf("load %s for deletion: %w", entityType, err)
		}
		if err := storage.Delete(ctx, found); err != nil {
			return result, fmt.Errorf("delete %s: %w", entityType, err)
		}
		if err := p.forget(ctx, uuids); err != nil {
			return result, err
		}

		result.Deleted[entityType] = len(found)
		result.Missing += len(uuids) - len(found)
		logger.Info("deleted imported entities",
			"entity_type", entityType, "deleted", len(found), "missing", len(uuids)-len(found))
	}

	return result, nil
}
