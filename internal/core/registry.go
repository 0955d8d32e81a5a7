package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// StructureFunc turns one row in one language into a ContentRecord.
type StructureFunc func(ctx context.Context, s *Structurer, row Row, langcode string) (ContentRecord, error)

// KindDefinition contains everything needed to import one content kind.
type KindDefinition struct {
	Kind       Kind
	EntityType string      // Entity type the records are stored as
	Label      string      // Display name: "Articles"
	Columns    []FieldSpec // Columns the structure function reads
	Structure  StructureFunc
}

var (
	registry   = make(map[Kind]KindDefinition)
	registryMu sync.RWMutex
)

// Register adds a kind definition to the registry.
// Panics if the kind is already registered or has no structure function.
func Register(def KindDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Kind]; exists {
		panic(fmt.Sprintf("content kind already registered: %s", def.Kind))
	}
	if def.Structure == nil {
		panic(fmt.Sprintf("content kind %s has no structure function", def.Kind))
	}
	registry[def.Kind] = def
}

// Unregister removes a kind. Used by tests registering throwaway kinds.
func Unregister(kind Kind) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, kind)
}

// Get returns a kind definition. Returns false if not registered.
func Get(kind Kind) (KindDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[kind]
	return def, ok
}

// All returns all registered kinds sorted by entity type then kind.
func All() []KindDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]KindDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].EntityType != result[j].EntityType {
			return result[i].EntityType < result[j].EntityType
		}
		return result[i].Kind < result[j].Kind
	})

	return result
}
