package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penyaskito/dashboard-initiative/internal/entity"
)

// newTestStore connects to TEST_DATABASE_URL and empties the tables.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	s, err := Open(ctx, url, PoolOptions{MaxConns: 2}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = s.pool.Exec(ctx, `TRUNCATE entity_translations, entities, key_value RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return s
}

func TestStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	nodes, err := s.Storage(entity.TypeNode)
	require.NoError(t, err)

	e, err := nodes.Create(entity.Values{"type": "page", "title": "Home", "langcode": "en"})
	require.NoError(t, err)
	require.NoError(t, nodes.Save(ctx, e))
	require.NoError(t, e.AddTranslation("es", entity.Values{"title": "Inicio"}))
	require.NoError(t, nodes.Save(ctx, e))

	got, err := nodes.LoadByProperties(ctx, entity.Properties{"uuid": {e.UUID()}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	tr, ok := got[0].Translation("es")
	require.True(t, ok)
	assert.Equal(t, "Inicio", tr.String("title"))

	require.NoError(t, nodes.Delete(ctx, got))
	got, err = nodes.LoadByProperties(ctx, entity.Properties{"uuid": {e.UUID()}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_KeyValue(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Set(ctx, "registry", map[string]string{"a": "node"}))

	var got map[string]string
	found, err := s.Get(ctx, "registry", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, map[string]string{"a": "node"}, got)
}

func TestStorage_UnknownType(t *testing.T) {
	s := &Store{}
	_, err := s.Storage("comment")
	require.ErrorIs(t, err, entity.ErrUnknownEntityType)
}
