package engine_test

import (
	"context"
	"testing"

	"threadhub/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconciler_InitialLoad(t *testing.T) {
	backend := newFakeBackendWithSeed(t)
	srv := backend.server(t)

	client := engine.NewClient(srv.URL)
	store := engine.NewStore()
	t.Cleanup(store.Close)
	reconciler := engine.NewReconciler(client, store)

	require.NoError(t, reconciler.InitialLoad(context.Background(), 1))

	tree := store.Tree()
	require.Len(t, tree, 2)
	assert.Len(t, tree[0].Replies, 1)
	assert.True(t, store.Expanded(1))
	// An initial load never highlights anything
	assert.Equal(t, int64(0), store.Highlighted())
}

func TestReconciler_ReconcileResetsLikedOverlay(t *testing.T) {
	backend := newFakeBackendWithSeed(t)
	srv := backend.server(t)

	client := engine.NewClient(srv.URL)
	store := engine.NewStore()
	t.Cleanup(store.Close)
	reconciler := engine.NewReconciler(client, store)
	require.NoError(t, reconciler.InitialLoad(context.Background(), 1))

	store.SetLiked(1, true)

	require.NoError(t, reconciler.Reconcile(context.Background(), 1, nil))

	state, ok := store.Like(1)
	require.True(t, ok)
	assert.False(t, state.Liked, "liked flags never survive a refresh")
	assert.Equal(t, 2, state.Count)
}

func TestReconciler_ClosedStoreDiscardsRefresh(t *testing.T) {
	backend := newFakeBackendWithSeed(t)
	srv := backend.server(t)

	client := engine.NewClient(srv.URL)
	store := engine.NewStore()
	reconciler := engine.NewReconciler(client, store)
	require.NoError(t, reconciler.InitialLoad(context.Background(), 1))

	store.Close()

	// The fetch still runs, but the result is thrown away
	require.NoError(t, reconciler.Reconcile(context.Background(), 1, nil))
	require.Len(t, store.Tree(), 2)
	assert.Equal(t, "root", store.Tree()[0].Content)
}

func newFakeBackendWithSeed(t *testing.T) *fakeBackend {
	t.Helper()
	return newFakeBackend(seedComments()...)
}
