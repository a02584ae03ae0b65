package generator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	tick := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return store
}

func TestStoreMarkAndLoad(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.MarkGenerated(ctx, "b/SKILL.md"))
	require.NoError(t, store.MarkFailed(ctx, "a/SKILL.md", errors.New("timeout")))
	require.NoError(t, store.MarkGenerated(ctx, "c/SKILL.md"))

	state, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b/SKILL.md", "c/SKILL.md"}, state.Generated)
	assert.Equal(t, []string{"a/SKILL.md"}, state.Failed)
	assert.Equal(t, time.Date(2026, 10, 19, 9, 0, 3, 0, time.UTC), state.LastUpdated)

	require.NoError(t, store.MarkGenerated(ctx, "a/SKILL.md"))
	state, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b/SKILL.md", "c/SKILL.md", "a/SKILL.md"}, state.Generated)
	assert.Empty(t, state.Failed)
}

func TestStoreClearFailed(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.MarkFailed(ctx, "a/SKILL.md", nil))
	require.NoError(t, store.MarkGenerated(ctx, "b/SKILL.md"))
	require.NoError(t, store.ClearFailed(ctx))

	state, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, state.Failed)
	assert.Equal(t, []string{"b/SKILL.md"}, state.Generated)
}

func TestStoreRuns(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first := &Run{ID: "run-1", Mode: ModeAll, Provider: "anthropic"}
	require.NoError(t, store.BeginRun(ctx, first))
	first.Succeeded, first.Failed = 3, 1
	require.NoError(t, store.FinishRun(ctx, first))

	require.NoError(t, store.BeginRun(ctx, &Run{ID: "run-2", Mode: ModeRetry, Provider: "openai"}))

	runs, err := store.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.False(t, runs[0].FinishedAt.Valid)
	assert.Equal(t, "run-1", runs[1].ID)
	assert.Equal(t, 3, runs[1].Succeeded)
	assert.Equal(t, 1, runs[1].Failed)
}

func TestImportLegacy(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	path := filepath.Join(t.TempDir(), "generation_state.json")

	imported, err := store.ImportLegacy(ctx, path)
	require.NoError(t, err)
	assert.False(t, imported)

	require.NoError(t, os.WriteFile(path, []byte(`{"generated": ["a/SKILL.md", "b/SKILL.md"], "failed": ["c/SKILL.md"], "last_updated": "2025-01-01T00:00:00"}`), 0o644))

	imported, err = store.ImportLegacy(ctx, path)
	require.NoError(t, err)
	assert.True(t, imported)

	state, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/SKILL.md", "b/SKILL.md"}, state.Generated)
	assert.Equal(t, []string{"c/SKILL.md"}, state.Failed)

	imported, err = store.ImportLegacy(ctx, path)
	require.NoError(t, err)
	assert.False(t, imported)
}
