package main

import (
	"context"
	"errors"

	"github.com/penyaskito/dashboard-initiative/internal/core"
	"github.com/penyaskito/dashboard-initiative/internal/entity"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK         = 0
	exitFailure    = 1
	exitValidation = 2
	exitUsage      = 3
	exitStore      = 4
	exitBusy       = 5
	exitSafetyNet  = 6
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

// runError classifies an error returned by the service.
func runError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, core.ErrImportInProgress):
		return withCode(exitBusy, err)
	case errors.Is(err, core.ErrUnknownKind),
		errors.Is(err, core.ErrMissingColumn),
		errors.Is(err, core.ErrInvalidRecord),
		errors.Is(err, core.ErrReadTable),
		errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrUnknownEntityType):
		return withCode(exitValidation, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return withCode(exitFailure, err)
	default:
		return withCode(exitStore, err)
	}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitFailure
}
