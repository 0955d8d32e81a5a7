package core

import "errors"

var (
	// ErrUnknownKind is returned when no structuring strategy is registered for a content kind.
	ErrUnknownKind = errors.New("unknown content kind")

	// ErrMissingColumn is returned when a required column is absent from a table header.
	ErrMissingColumn = errors.New("missing required column")

	// ErrReadTable wraps I/O and parse failures other than a missing file.
	ErrReadTable = errors.New("read table")

	// ErrInvalidRecord is returned when a structured record fails validation.
	ErrInvalidRecord = errors.New("invalid content record")

	// ErrImportInProgress is returned when another import or delete run holds the guard.
	ErrImportInProgress = errors.New("another import run is in progress")
)
