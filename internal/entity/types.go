package entity

import (
	"errors"
	"fmt"
)

// Entity types the stores know how to hold.
const (
	TypeNode = "node"
	TypeUser = "user"
)

// ErrMissingField is returned by Create when a field the entity type needs is empty.
var ErrMissingField = errors.New("missing required field")

var requiredFields = map[string][]string{
	TypeNode: {"type"},
	TypeUser: {"name"},
}

// KnownTypes lists the supported entity types.
func KnownTypes() []string {
	return []string{TypeNode, TypeUser}
}

// Build validates values for entityType and returns an unsaved entity.
// Storages implement Create with it.
func Build(entityType string, values Values) (*Entity, error) {
	fields, ok := requiredFields[entityType]
	if !ok {
		return nil, fmt.Errorf("create %s: %w", entityType, ErrUnknownEntityType)
	}
	for _, f := range fields {
		if values.String(f) == "" {
			return nil, fmt.Errorf("create %s: %q: %w", entityType, f, ErrMissingField)
		}
	}
	return New(entityType, values), nil
}
