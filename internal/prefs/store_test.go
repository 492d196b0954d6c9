package prefs

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := NewStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestSetGetRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, 1, KeySelectionMode, "multiple"))

	var mode string
	found := store.Get(ctx, 1, KeySelectionMode, &mode)
	assert.True(t, found)
	assert.Equal(t, "multiple", mode)
}

func TestGetMissingKeyIsSoftMiss(t *testing.T) {
	store, _ := newTestStore(t)

	var mode string
	found := store.Get(context.Background(), 1, KeySelectionMode, &mode)
	assert.False(t, found)
	assert.Empty(t, mode)
}

func TestGetMalformedValueIsSoftMiss(t *testing.T) {
	store, mr := newTestStore(t)

	// value written by an older build, not valid JSON
	mr.Set("prefs:1:selection_mode", "{broken")

	var mode string
	found := store.Get(context.Background(), 1, KeySelectionMode, &mode)
	assert.False(t, found, "malformed value must fall back to the default, not error")
}

func TestPreferencesAreScopedPerOperator(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, 1, KeyTimeStep, 15))
	require.NoError(t, store.Set(ctx, 2, KeyTimeStep, 30))

	var step int
	require.True(t, store.Get(ctx, 1, KeyTimeStep, &step))
	assert.Equal(t, 15, step)
	require.True(t, store.Get(ctx, 2, KeyTimeStep, &step))
	assert.Equal(t, 30, step)
}

func TestFareScratchKeyedByMonth(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	type scratch struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, store.Set(ctx, 1, FareScratchKey("2026-08"), scratch{Total: 90_000}))
	require.NoError(t, store.Set(ctx, 1, FareScratchKey("2026-09"), scratch{Total: 45_000}))

	var got scratch
	require.True(t, store.Get(ctx, 1, FareScratchKey("2026-08"), &got))
	assert.Equal(t, int64(90_000), got.Total)
}

func TestGetConnectionFailureIsSoftMiss(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	var mode string
	found := store.Get(context.Background(), 1, KeySelectionMode, &mode)
	assert.False(t, found)
}
