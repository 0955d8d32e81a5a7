package core

// validation.go checks source tables and structured records before anything
// is written:
//  1. Header validation: every required column of the kind is present
//  2. Record validation: struct rules on ContentRecord (kind, langcode, alias)

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldType is the expected shape of a column value.
type FieldType int

const (
	FieldText FieldType = iota
	FieldBool
)

// FieldSpec describes one column a content kind reads.
type FieldSpec struct {
	Name     string    // Column header name (must match exactly)
	Type     FieldType // Expected value shape
	Required bool      // Column must exist in the header; the value may still be empty
}

// ValidateHeaders reports every required column missing from header.
func ValidateHeaders(header []string, specs []FieldSpec) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}

	var missing []string
	for _, spec := range specs {
		if spec.Required && !present[spec.Name] {
			missing = append(missing, spec.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// ParseBool accepts true/false, yes/no, t/f, y/n and 1/0 in any case.
// An empty value is false. The structurer only uses it to flag unusual
// status values; records keep the source text.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return true, nil
	case "false", "f", "no", "n", "0", "":
		return false, nil
	}
	return false, fmt.Errorf("%w: must be yes/no, true/false, or 1/0, got %q", ErrInvalidRecord, s)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateRecord applies the struct rules of ContentRecord.
func ValidateRecord(rec ContentRecord) error {
	err := recordValidator().Struct(rec)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(parts, "; "))
}
