package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/penyaskito/dashboard-initiative/internal/logging"
)

// AuthorLookup resolves an author display name to an account id.
type AuthorLookup interface {
	Resolve(ctx context.Context, name string) (int64, error)
}

// StructurerOptions configure record shaping.
type StructurerOptions struct {
	LanguagesDir    string // <module>/default_content/languages
	DefaultLanguage string // Langcode stamped on every record
	BodyFormat      string // Text format of body fields
}

// Structurer maps raw rows to ContentRecords through the kind registry.
type Structurer struct {
	opts    StructurerOptions
	authors AuthorLookup
	paths   *NodePathIndex
}

// NewStructurer creates a structurer writing slugs into paths.
func NewStructurer(opts StructurerOptions, authors AuthorLookup, paths *NodePathIndex) *Structurer {
	return &Structurer{opts: opts, authors: authors, paths: paths}
}

// Structure builds the record for row in langcode. Unregistered kinds fail
// with ErrUnknownKind; nothing is produced for them.
func (s *Structurer) Structure(ctx context.Context, kind Kind, row Row, langcode string) (ContentRecord, error) {
	def, ok := Get(kind)
	if !ok {
		return ContentRecord{}, fmt.Errorf("structure %q: %w", kind, ErrUnknownKind)
	}

	rec, err := def.Structure(ctx, s, row, langcode)
	if err != nil {
		return ContentRecord{}, fmt.Errorf("structure %s %q (%s): %w", kind, row.ID(), langcode, err)
	}
	if err := ValidateRecord(rec); err != nil {
		return ContentRecord{}, fmt.Errorf("structure %s %q (%s): %w", kind, row.ID(), langcode, err)
	}
	return rec, nil
}

// Common fills the fields every kind shares: title, status, the record
// langcode, the path alias and the author. Title and status are copied from
// the row unchanged. It also records the row's slug in the path index, even
// when the slug is empty.
//
// The record langcode is always the default language; the language of a
// translation is carried by the translation itself.
func (s *Structurer) Common(ctx context.Context, kind Kind, row Row, langcode string) (ContentRecord, error) {
	id, err := row.Require("id")
	if err != nil {
		return ContentRecord{}, err
	}
	title, err := row.Require("title")
	if err != nil {
		return ContentRecord{}, err
	}
	status, err := row.Require("status")
	if err != nil {
		return ContentRecord{}, err
	}

	log := logging.FromContext(ctx)
	if title == "" {
		log.Warn("row has an empty title", "kind", kind, "source_id", id, "langcode", langcode)
	}
	if _, err := ParseBool(status); err != nil {
		log.Warn("unrecognized status value, stored as is",
			"kind", kind, "source_id", id, "langcode", langcode, "status", status)
	}

	rec := ContentRecord{
		Kind:     kind,
		Title:    title,
		Status:   status,
		Langcode: s.opts.DefaultLanguage,
	}

	slug := row.Get("slug")
	if slug != "" {
		rec.PathAlias = "/" + slug
	}
	s.paths.Save(langcode, kind, id, slug)

	if name := row.Get("author"); name != "" {
		uid, err := s.authors.Resolve(ctx, name)
		if err != nil {
			return ContentRecord{}, fmt.Errorf("resolve author %q: %w", name, err)
		}
		rec.AuthorID = uid
	}

	return rec, nil
}

// RichText wraps value in the configured body format.
func (s *Structurer) RichText(value string) *Body {
	return &Body{Value: value, Format: s.opts.BodyFormat}
}

// ReadBodyFile returns the contents of <languages>/<langcode>/<dir>/<name>.
// ok is false when the file cannot be read or name escapes the directory.
func (s *Structurer) ReadBodyFile(langcode, dir, name string) (contents string, ok bool, err error) {
	if !filepath.IsLocal(name) {
		return "", false, fmt.Errorf("body file %q is not a local path", name)
	}
	f, err := os.Open(filepath.Join(s.opts.LanguagesDir, langcode, dir, name))
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	data, err := io.ReadAll(wrapSource(f))
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// structureArticle reads the body from a file named by the body column.
func structureArticle(ctx context.Context, s *Structurer, row Row, langcode string) (ContentRecord, error) {
	rec, err := s.Common(ctx, KindArticle, row, langcode)
	if err != nil {
		return ContentRecord{}, err
	}

	if name := row.Get("body"); name != "" {
		body, ok, err := s.ReadBodyFile(langcode, "article_body", name)
		if ok {
			rec.Body = s.RichText(body)
		} else {
			logging.FromContext(ctx).Warn("article body not readable, importing without body",
				"source_id", row.ID(), "langcode", langcode, "file", name, "error", err)
		}
	}
	return rec, nil
}

// structurePage uses the body column as inline rich text.
func structurePage(ctx context.Context, s *Structurer, row Row, langcode string) (ContentRecord, error) {
	rec, err := s.Common(ctx, KindPage, row, langcode)
	if err != nil {
		return ContentRecord{}, err
	}

	if body := row.Get("body"); body != "" {
		rec.Body = s.RichText(body)
	}
	return rec, nil
}
