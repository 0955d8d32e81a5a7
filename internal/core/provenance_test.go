package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penyaskito/dashboard-initiative/internal/entity"
	"github.com/penyaskito/dashboard-initiative/internal/state"
	"github.com/penyaskito/dashboard-initiative/internal/store/memory"
)

func TestProvenance_RecordKeepsExistingEntries(t *testing.T) {
	ctx := context.Background()
	p := NewProvenance(state.NewMemory(), "registry")

	require.NoError(t, p.Record(ctx, map[string]string{"a": "node"}))
	require.NoError(t, p.Record(ctx, map[string]string{"a": "user", "b": "user"}))

	tracked, err := p.Tracked(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "node", "b": "user"}, tracked)

	counts, err := p.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"node": 1, "user": 1}, counts)
}

func seedTracked(t *testing.T, store *memory.Store, p *Provenance) (nodeUUIDs, userUUIDs []string) {
	t.Helper()
	ctx := context.Background()

	nodes, err := store.Storage(entity.TypeNode)
	require.NoError(t, err)
	users, err := store.Storage(entity.TypeUser)
	require.NoError(t, err)

	for _, title := range []string{"One", "Two"} {
		e, err := nodes.Create(entity.Values{"type": "page", "title": title})
		require.NoError(t, err)
		require.NoError(t, nodes.Save(ctx, e))
		require.NoError(t, p.Record(ctx, map[string]string{e.UUID(): entity.TypeNode}))
		nodeUUIDs = append(nodeUUIDs, e.UUID())
	}
	u, err := users.Create(entity.Values{"name": "Ana"})
	require.NoError(t, err)
	require.NoError(t, users.Save(ctx, u))
	require.NoError(t, p.Record(ctx, map[string]string{u.UUID(): entity.TypeUser}))
	userUUIDs = append(userUUIDs, u.UUID())
	return nodeUUIDs, userUUIDs
}

func TestProvenance_DeleteAll(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	p := NewProvenance(state.NewMemory(), "registry")
	seedTracked(t, store, p)

	// An untracked entity must survive.
	nodes, err := store.Storage(entity.TypeNode)
	require.NoError(t, err)
	keep, err := nodes.Create(entity.Values{"type": "page", "title": "Keep"})
	require.NoError(t, err)
	require.NoError(t, nodes.Save(ctx, keep))

	result, err := p.DeleteAll(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Tracked)
	assert.Equal(t, map[string]int{"node": 2, "user": 1}, result.Deleted)
	assert.Zero(t, result.Missing)

	assert.Equal(t, 1, store.Count(entity.TypeNode))
	assert.Equal(t, 0, store.Count(entity.TypeUser))

	tracked, err := p.Tracked(ctx)
	require.NoError(t, err)
	assert.Empty(t, tracked)

	again, err := p.DeleteAll(ctx, store)
	require.NoError(t, err)
	assert.Zero(t, again.Tracked)
	assert.Empty(t, again.Deleted)
}

func TestProvenance_DeleteAllToleratesMissingEntities(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	p := NewProvenance(state.NewMemory(), "registry")
	nodeUUIDs, _ := seedTracked(t, store, p)

	// Someone removed a node by hand.
	nodes, err := store.Storage(entity.TypeNode)
	require.NoError(t, err)
	gone, err := nodes.LoadByProperties(ctx, entity.Properties{"uuid": {nodeUUIDs[0]}})
	require.NoError(t, err)
	require.NoError(t, nodes.Delete(ctx, gone))

	result, err := p.DeleteAll(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Missing)
	assert.Equal(t, 1, result.Deleted["node"])

	tracked, err := p.Tracked(ctx)
	require.NoError(t, err)
	assert.Empty(t, tracked)
}

func TestProvenance_FailedDeleteKeepsEntries(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	p := NewProvenance(state.NewMemory(), "registry")
	_, userUUIDs := seedTracked(t, store, p)

	failing := &failingManager{Manager: store, failDelete: map[string]bool{entity.TypeUser: true}}
	_, err := p.DeleteAll(ctx, failing)
	require.ErrorIs(t, err, errInjected)

	// Nodes are processed first and are gone; the user group stays tracked.
	assert.Equal(t, 0, store.Count(entity.TypeNode))
	tracked, err := p.Tracked(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{userUUIDs[0]: entity.TypeUser}, tracked)

	result, err := p.DeleteAll(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Deleted["user"])
}

func TestProvenance_UnknownEntityType(t *testing.T) {
	ctx := context.Background()
	p := NewProvenance(state.NewMemory(), "registry")
	require.NoError(t, p.Record(ctx, map[string]string{"x": "taxonomy_term"}))

	_, err := p.DeleteAll(ctx, memory.New())
	require.ErrorIs(t, err, entity.ErrUnknownEntityType)

	tracked, err := p.Tracked(ctx)
	require.NoError(t, err)
	assert.Len(t, tracked, 1)
}
