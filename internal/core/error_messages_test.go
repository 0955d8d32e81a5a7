package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/penyaskito/dashboard-initiative/internal/entity"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"unknown kind", fmt.Errorf("structure row 3: %w", ErrUnknownKind), "IMP001"},
		{"import in progress", ErrImportInProgress, "IMP002"},
		{"unknown entity type", fmt.Errorf("storage: %w", entity.ErrUnknownEntityType), "IMP003"},
		{"cancelled", fmt.Errorf("import node/article: %w", context.Canceled), "IMP004"},
		{"missing column", fmt.Errorf("row 1: %w", ErrMissingColumn), "CSV002"},
		{"read table", fmt.Errorf("%w: /x.csv: bad quote", ErrReadTable), "CSV001"},
		{"invalid record", fmt.Errorf("%w: title", ErrInvalidRecord), "VAL001"},
		{"duplicate translation", fmt.Errorf("save: %w", entity.ErrTranslationExists), "VAL003"},
		{"duplicate key text", errors.New("ERROR: duplicate key value violates unique constraint"), "STO001"},
		{"sqlite locked", errors.New("database is locked (5) (SQLITE_BUSY)"), "STO003"},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5432: connection refused"), "STO002"},
		{"unknown", errors.New("something strange"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	got := FormatUserError(ErrImportInProgress)
	want := "Another import or delete is running (Code: IMP002). Wait for it to finish and try again"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil should not be user facing")
	}
	if IsUserFacing(errors.New("boom")) {
		t.Error("unmatched error should not be user facing")
	}
	if !IsUserFacing(fmt.Errorf("x: %w", ErrUnknownKind)) {
		t.Error("unknown kind should be user facing")
	}
}
