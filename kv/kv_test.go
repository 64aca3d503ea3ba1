package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir, err := OpenDir(filepath.Join(t.TempDir(), "state"))
	require.NoError(t, err)

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "kv.db"), WithMkdirAll())
	require.NoError(t, err)

	mem, err := OpenSQLite(":memory:")
	require.NoError(t, err)

	stores := map[string]Store{
		"memory":        NewMemory(),
		"dir":           dir,
		"sqlite":        db,
		"sqlite-memory": mem,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Load(ctx, "card-studio/state/v1")
			require.NoError(t, err)
			assert.False(t, ok, "fresh store has the key")

			require.NoError(t, s.Save(ctx, "card-studio/state/v1", `{"a":1}`))
			require.NoError(t, s.Save(ctx, "card-studio/state/v1", `{"a":2}`))

			v, ok, err := s.Load(ctx, "card-studio/state/v1")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `{"a":2}`, v, "save must overwrite the whole value")

			require.NoError(t, s.Delete(ctx, "card-studio/state/v1"))
			require.NoError(t, s.Delete(ctx, "card-studio/state/v1"), "deleting twice")
			_, ok, err = s.Load(ctx, "card-studio/state/v1")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStoreClosed(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Close())
			require.NoError(t, s.Close(), "Close must be idempotent")
			assert.ErrorIs(t, s.Save(ctx, "k", "v"), ErrClosed)
			_, _, err := s.Load(ctx, "k")
			assert.ErrorIs(t, err, ErrClosed)
		})
	}
}

func TestDirLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	d, err := OpenDir(root)
	require.NoError(t, err)
	defer d.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, d.Save(context.Background(), "key", "value"))
	}
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "key.json", entries[0].Name())
}

func TestDirCanceledContext(t *testing.T) {
	d, err := OpenDir(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, d.Save(ctx, "k", "v"), context.Canceled)
}
