package core

import (
	"fmt"
	"slices"
	"time"

	"github.com/penyaskito/dashboard-initiative/internal/entity"
)

// Kind names a content bundle, e.g. "article" or "page".
type Kind string

const (
	KindArticle Kind = "article"
	KindPage    Kind = "page"
)

// Row is one data line of a source table keyed by header name.
// Rows of one table share their header slice.
type Row struct {
	header []string
	values map[string]string
}

// NewRow pairs header names with values by position. Missing trailing values
// become "", values past the header are dropped.
func NewRow(header, record []string) Row {
	values := make(map[string]string, len(header))
	for i, col := range header {
		if i < len(record) {
			values[col] = record[i]
		} else {
			values[col] = ""
		}
	}
	return Row{header: header, values: values}
}

// Get returns the value of col, or "" if the table has no such column.
func (r Row) Get(col string) string {
	return r.values[col]
}

// Has reports whether the table header contains col.
func (r Row) Has(col string) bool {
	_, ok := r.values[col]
	return ok
}

// Require returns the value of col, failing when the header lacks the column.
// Empty values are returned as-is.
func (r Row) Require(col string) (string, error) {
	v, ok := r.values[col]
	if !ok {
		return "", fmt.Errorf("column %q: %w", col, ErrMissingColumn)
	}
	return v, nil
}

// Columns returns the header in file order.
func (r Row) Columns() []string {
	return slices.Clone(r.header)
}

// ID returns the source row identifier used for cross-language matching.
func (r Row) ID() string {
	return r.values["id"]
}

// LanguageTable holds the rows loaded for each language whose file exists.
type LanguageTable map[string][]Row

// ReconciledEntry is a default-language row with the matching rows of other
// languages. Languages without a match are absent from Translations.
type ReconciledEntry struct {
	Default      Row
	Translations map[string]Row
}

// Body is a rich text field value.
type Body struct {
	Value  string `json:"value"`
	Format string `json:"format"`
}

// ContentRecord is the canonical shape of one row in one language, ready to
// be stored as entity values.
type ContentRecord struct {
	Kind      Kind   `validate:"required"`
	Title     string
	Status    string // Source value, stored as read
	Langcode  string `validate:"required,min=2"`
	Body      *Body
	PathAlias string `validate:"omitempty,startswith=/"`
	AuthorID  int64  `validate:"gte=0"`
}

// Values converts the record to entity field values.
func (c ContentRecord) Values() entity.Values {
	v := entity.Values{
		"type":     string(c.Kind),
		"title":    c.Title,
		"status":   c.Status,
		"langcode": c.Langcode,
	}
	if c.Body != nil {
		v["body"] = map[string]any{"value": c.Body.Value, "format": c.Body.Format}
	}
	if c.PathAlias != "" {
		v["path"] = map[string]any{"alias": c.PathAlias}
	}
	if c.AuthorID > 0 {
		v["uid"] = c.AuthorID
	}
	return v
}

// Target is one (entity type, bundle) pair imported from one source file.
type Target struct {
	EntityType string `json:"entity_type"`
	Kind       Kind   `json:"bundle"`
}

// SourcePath returns the table path relative to a language directory.
func (t Target) SourcePath() string {
	return t.EntityType + "/" + string(t.Kind) + ".csv"
}

func (t Target) String() string {
	return t.EntityType + "/" + string(t.Kind)
}

// KindResult summarizes the import of one target.
type KindResult struct {
	Target       Target   `json:"target"`
	Skipped      bool     `json:"skipped"`
	Languages    []string `json:"languages"`
	Created      int      `json:"created"`
	Translations int      `json:"translations"`
}

// ImportResult summarizes a full import run.
type ImportResult struct {
	RunID          string        `json:"run_id"`
	Kinds          []KindResult  `json:"kinds"`
	AuthorsCreated int           `json:"authors_created"`
	Duration       time.Duration `json:"duration"`
}

// DeleteResult summarizes a deletion run.
type DeleteResult struct {
	RunID    string         `json:"run_id"`
	Tracked  int            `json:"tracked"`
	Deleted  map[string]int `json:"deleted"`
	Missing  int            `json:"missing"`
	Duration time.Duration  `json:"duration"`
}
