package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penyaskito/dashboard-initiative/internal/entity"
)

func TestStore_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	nodes, err := s.Storage(entity.TypeNode)
	require.NoError(t, err)

	e, err := nodes.Create(entity.Values{"type": "page", "title": "Home", "langcode": "en"})
	require.NoError(t, err)
	require.NoError(t, nodes.Save(ctx, e))
	assert.Equal(t, int64(1), e.ID())

	require.NoError(t, e.AddTranslation("es", entity.Values{"title": "Inicio"}))
	require.NoError(t, nodes.Save(ctx, e))
	assert.Equal(t, 1, s.Count(entity.TypeNode), "second save updates")

	loaded, err := nodes.LoadByProperties(ctx, entity.Properties{"uuid": {e.UUID()}})
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Home", loaded[0].Label())
	tr, ok := loaded[0].Translation("es")
	require.True(t, ok)
	assert.Equal(t, "Inicio", tr.String("title"))

	require.NoError(t, nodes.Delete(ctx, loaded))
	require.NoError(t, nodes.Delete(ctx, loaded), "deleting twice is a no-op")
	assert.Equal(t, 0, s.Count(entity.TypeNode))
}

func TestStore_UnknownType(t *testing.T) {
	_, err := New().Storage("comment")
	require.ErrorIs(t, err, entity.ErrUnknownEntityType)
}

func TestStore_LoadOrderedByID(t *testing.T) {
	ctx := context.Background()
	users, err := New().Storage(entity.TypeUser)
	require.NoError(t, err)

	for range 3 {
		u, err := users.Create(entity.Values{"name": "Same Name"})
		require.NoError(t, err)
		require.NoError(t, users.Save(ctx, u))
	}

	got, err := users.LoadByProperties(ctx, entity.Properties{"name": {"Same Name"}})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(1), got[0].ID())
	assert.Equal(t, int64(3), got[2].ID())
}
