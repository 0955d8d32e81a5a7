// Package entity defines the content repository contract the importer writes
// through: typed entities carrying field values and per-language translations,
// and the storages that create, save, load and delete them.
package entity

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"
)

var (
	// ErrUnknownEntityType is returned by a Manager for an entity type it does not store.
	ErrUnknownEntityType = errors.New("unknown entity type")

	// ErrTranslationExists is returned when a language already has a translation
	// or is the entity's own language.
	ErrTranslationExists = errors.New("translation already exists")
)

// Values holds an entity's field values, keyed by field name.
// Values must be JSON encodable.
type Values map[string]any

// Clone returns a shallow copy of v.
func (v Values) Clone() Values {
	if v == nil {
		return Values{}
	}
	return maps.Clone(v)
}

// String returns the field as a string, or "" when absent or not a string.
func (v Values) String(field string) string {
	s, _ := v[field].(string)
	return s
}

// Properties select entities by field value. An entity matches when, for every
// property, its field equals one of the listed values.
type Properties map[string][]string

// Entity is one stored record of some entity type.
type Entity struct {
	entityType   string
	id           int64
	uuid         string
	langcode     string
	values       Values
	translations map[string]Values
}

// New builds an unsaved entity of the given type. A "langcode" string value
// becomes the entity's own language.
func New(entityType string, values Values) *Entity {
	v := values.Clone()
	return &Entity{
		entityType:   entityType,
		uuid:         uuid.NewString(),
		langcode:     v.String("langcode"),
		values:       v,
		translations: make(map[string]Values),
	}
}

// Restore rebuilds a persisted entity. Storages call it when loading rows.
func Restore(entityType string, id int64, uuid, langcode string, values Values, translations map[string]Values) *Entity {
	if translations == nil {
		translations = make(map[string]Values)
	}
	return &Entity{
		entityType:   entityType,
		id:           id,
		uuid:         uuid,
		langcode:     langcode,
		values:       values.Clone(),
		translations: translations,
	}
}

func (e *Entity) Type() string     { return e.entityType }
func (e *Entity) ID() int64        { return e.id }
func (e *Entity) UUID() string     { return e.uuid }
func (e *Entity) Langcode() string { return e.langcode }

// IsNew reports whether the entity has not been saved yet.
func (e *Entity) IsNew() bool { return e.id == 0 }

// Values returns a copy of the entity's own field values.
func (e *Entity) Values() Values { return e.values.Clone() }

// Label returns the human readable name: title for content, name for accounts.
func (e *Entity) Label() string {
	if t := e.values.String("title"); t != "" {
		return t
	}
	return e.values.String("name")
}

// AssignID is called by a storage on first save.
func (e *Entity) AssignID(id int64) { e.id = id }

// AddTranslation attaches field values for another language.
// The translation is only persisted by the next save.
func (e *Entity) AddTranslation(langcode string, values Values) error {
	if langcode == "" {
		return fmt.Errorf("add translation to %s %s: empty langcode", e.entityType, e.uuid)
	}
	if _, ok := e.translations[langcode]; ok || langcode == e.langcode {
		return fmt.Errorf("add %s translation to %s %s: %w", langcode, e.entityType, e.uuid, ErrTranslationExists)
	}
	e.translations[langcode] = values.Clone()
	return nil
}

// Translation returns the values stored for langcode.
func (e *Entity) Translation(langcode string) (Values, bool) {
	v, ok := e.translations[langcode]
	if !ok {
		return nil, false
	}
	return v.Clone(), true
}

// TranslationLanguages lists translated languages in sorted order.
func (e *Entity) TranslationLanguages() []string {
	return slices.Sorted(maps.Keys(e.translations))
}

// Matches reports whether the entity satisfies every property. The "uuid" and
// "id" properties match the entity's identifiers; any other property matches
// the string form of the field value.
func (e *Entity) Matches(props Properties) bool {
	for field, want := range props {
		var got string
		switch field {
		case "uuid":
			got = e.uuid
		case "id":
			got = fmt.Sprint(e.id)
		default:
			v, ok := e.values[field]
			if !ok {
				return false
			}
			got = fmt.Sprint(v)
		}
		if !slices.Contains(want, got) {
			return false
		}
	}
	return true
}

// Storage persists entities of one type.
type Storage interface {
	EntityType() string
	// Create builds an unsaved entity; nothing is written until Save.
	Create(values Values) (*Entity, error)
	// Save inserts a new entity (assigning its id) or updates an existing one,
	// including all of its translations.
	Save(ctx context.Context, e *Entity) error
	// LoadByProperties returns matching entities ordered by id.
	LoadByProperties(ctx context.Context, props Properties) ([]*Entity, error)
	// Delete removes the given entities. Entities already gone are ignored.
	Delete(ctx context.Context, entities []*Entity) error
}

// Manager hands out the storage for an entity type.
type Manager interface {
	Storage(entityType string) (Storage, error)
}
