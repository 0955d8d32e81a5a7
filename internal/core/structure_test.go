package core

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var articleHeader = []string{"id", "title", "status", "body", "slug", "author"}

func newTestStructurer(t *testing.T) (*Structurer, *stubAuthors, *NodePathIndex, string) {
	t.Helper()
	_, dir := newModule(t)
	authors := &stubAuthors{}
	paths := NewNodePathIndex()
	s := NewStructurer(StructurerOptions{
		LanguagesDir:    dir,
		DefaultLanguage: "en",
		BodyFormat:      "basic_html",
	}, authors, paths)
	return s, authors, paths, dir
}

func TestStructure_Article(t *testing.T) {
	s, authors, paths, dir := newTestStructurer(t)
	writeContent(t, dir, "en", "article_body/welcome.html", "<p>Welcome</p>")

	row := NewRow(articleHeader, []string{"1", "Welcome", "1", "welcome.html", "welcome", "Ana Pérez"})
	rec, err := s.Structure(context.Background(), KindArticle, row, "en")
	require.NoError(t, err)

	assert.Equal(t, KindArticle, rec.Kind)
	assert.Equal(t, "Welcome", rec.Title)
	assert.Equal(t, "1", rec.Status)
	assert.Equal(t, "en", rec.Langcode)
	require.NotNil(t, rec.Body)
	assert.Equal(t, "<p>Welcome</p>", rec.Body.Value)
	assert.Equal(t, "basic_html", rec.Body.Format)
	assert.Equal(t, "/welcome", rec.PathAlias)
	assert.Equal(t, int64(100), rec.AuthorID)
	assert.Equal(t, []string{"Ana Pérez"}, authors.calls)

	slug, ok := paths.Lookup("en", KindArticle, "1")
	assert.True(t, ok)
	assert.Equal(t, "welcome", slug)
}

func TestStructure_ArticleBodyFromTranslationDirectory(t *testing.T) {
	s, _, paths, dir := newTestStructurer(t)
	writeContent(t, dir, "es", "article_body/welcome.html", "<p>Bienvenida</p>")

	row := NewRow(articleHeader, []string{"1", "Bienvenida", "1", "welcome.html", "bienvenida", ""})
	rec, err := s.Structure(context.Background(), KindArticle, row, "es")
	require.NoError(t, err)

	require.NotNil(t, rec.Body)
	assert.Equal(t, "<p>Bienvenida</p>", rec.Body.Value)
	assert.Equal(t, "en", rec.Langcode, "record langcode stays the default language")
	assert.Zero(t, rec.AuthorID)

	slug, ok := paths.Lookup("es", KindArticle, "1")
	assert.True(t, ok)
	assert.Equal(t, "bienvenida", slug)
}

func TestStructure_ArticleMissingBodyFile(t *testing.T) {
	s, _, _, _ := newTestStructurer(t)

	row := NewRow(articleHeader, []string{"2", "No body", "1", "missing.html", "", ""})
	rec, err := s.Structure(context.Background(), KindArticle, row, "en")
	require.NoError(t, err)
	assert.Nil(t, rec.Body)
}

func TestStructure_ArticleBodyOutsideDirectory(t *testing.T) {
	s, _, _, dir := newTestStructurer(t)
	writeContent(t, dir, "en", "secret.html", "nope")

	row := NewRow(articleHeader, []string{"3", "Escape", "1", "../secret.html", "", ""})
	rec, err := s.Structure(context.Background(), KindArticle, row, "en")
	require.NoError(t, err)
	assert.Nil(t, rec.Body)
}

func TestStructure_Page(t *testing.T) {
	s, _, paths, _ := newTestStructurer(t)

	row := NewRow(articleHeader, []string{"7", "About", "0", "<p>About us</p>", "", ""})
	rec, err := s.Structure(context.Background(), KindPage, row, "en")
	require.NoError(t, err)

	assert.Equal(t, KindPage, rec.Kind)
	assert.Equal(t, "0", rec.Status)
	require.NotNil(t, rec.Body)
	assert.Equal(t, "<p>About us</p>", rec.Body.Value)
	assert.Equal(t, "", rec.PathAlias)

	slug, ok := paths.Lookup("en", KindPage, "7")
	assert.True(t, ok, "empty slug is still recorded")
	assert.Equal(t, "", slug)
}

func TestStructure_Errors(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		header  []string
		record  []string
		wantErr error
	}{
		{"unknown kind", Kind("event"), articleHeader, []string{"1", "T", "1", "", "", ""}, ErrUnknownKind},
		{"missing status column", KindPage, []string{"id", "title"}, []string{"1", "T"}, ErrMissingColumn},
		{"missing title column", KindPage, []string{"id", "status"}, []string{"1", "1"}, ErrMissingColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _, _ := newTestStructurer(t)
			_, err := s.Structure(context.Background(), tt.kind, NewRow(tt.header, tt.record), "en")
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStructure_ValuesCopiedAsRead(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		name     string
		record   []string
		title    string
		status   string
		wantWarn string
	}{
		{"unusual status", []string{"2", "Draft", "2", "", "draft", ""}, "Draft", "2", "unrecognized status value"},
		{"word status", []string{"3", "Later", "published", "", "", ""}, "Later", "published", "unrecognized status value"},
		{"empty status", []string{"4", "Quiet", "", "", "", ""}, "Quiet", "", ""},
		{"empty title", []string{"5", "", "1", "", "acerca", ""}, "", "1", "row has an empty title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			s, _, _, _ := newTestStructurer(t)

			rec, err := s.Structure(context.Background(), KindPage, NewRow(articleHeader, tt.record), "es")
			require.NoError(t, err)
			assert.Equal(t, tt.title, rec.Title)
			assert.Equal(t, tt.status, rec.Status)
			assert.Equal(t, tt.status, rec.Values()["status"])

			if tt.wantWarn == "" {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), tt.wantWarn)
			assert.Contains(t, buf.String(), `"level":"WARN"`)
		})
	}
}

func TestStructure_AuthorFailurePropagates(t *testing.T) {
	s, authors, _, _ := newTestStructurer(t)
	authors.err = errors.New("users table gone")

	row := NewRow(articleHeader, []string{"1", "T", "1", "", "", "Bo"})
	_, err := s.Structure(context.Background(), KindPage, row, "en")
	require.ErrorIs(t, err, authors.err)
}

func TestRegistry(t *testing.T) {
	defs := All()
	require.Len(t, defs, 2)
	assert.Equal(t, KindArticle, defs[0].Kind)
	assert.Equal(t, KindPage, defs[1].Kind)

	assert.Panics(t, func() {
		Register(KindDefinition{Kind: KindPage, Structure: structurePage})
	})
	assert.Panics(t, func() {
		Register(KindDefinition{Kind: "nostructure"})
	})

	custom := Kind("landing")
	Register(KindDefinition{
		Kind:       custom,
		EntityType: "node",
		Structure: func(ctx context.Context, s *Structurer, row Row, langcode string) (ContentRecord, error) {
			return s.Common(ctx, custom, row, langcode)
		},
	})
	t.Cleanup(func() { Unregister(custom) })

	st, _, _, _ := newTestStructurer(t)
	rec, err := st.Structure(context.Background(), custom, NewRow(articleHeader, []string{"1", "Landing", "1", "", "landing", ""}), "en")
	require.NoError(t, err)
	assert.Equal(t, custom, rec.Kind)
	assert.Equal(t, "/landing", rec.PathAlias)
}

func TestContentRecord_Values(t *testing.T) {
	rec := ContentRecord{
		Kind:      KindArticle,
		Title:     "Hello",
		Status:    "1",
		Langcode:  "en",
		Body:      &Body{Value: "<p>x</p>", Format: "basic_html"},
		PathAlias: "/hello",
		AuthorID:  4,
	}
	v := rec.Values()
	assert.Equal(t, "article", v["type"])
	assert.Equal(t, "Hello", v["title"])
	assert.Equal(t, "1", v["status"])
	assert.Equal(t, "en", v["langcode"])
	assert.Equal(t, map[string]any{"value": "<p>x</p>", "format": "basic_html"}, v["body"])
	assert.Equal(t, map[string]any{"alias": "/hello"}, v["path"])
	assert.Equal(t, int64(4), v["uid"])

	bare := ContentRecord{Kind: KindPage, Title: "P", Langcode: "en"}.Values()
	assert.NotContains(t, bare, "body")
	assert.NotContains(t, bare, "path")
	assert.NotContains(t, bare, "uid")
}
