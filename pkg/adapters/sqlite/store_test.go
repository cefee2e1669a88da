package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/aretw0/hostbridge/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presets.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store, path
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestSQLiteStore_Contract(t *testing.T) {
	store, _ := openTestStore(t)
	ports.RunKVStoreContract(t, store)
}

func TestSQLiteStore_InMemory(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ports.RunKVStoreContract(t, store)
}

func TestSQLiteStore_InsertionOrderSurvivesOverwrite(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	for _, k := range []string{"b", "a", "c"} {
		require.NoError(t, store.Set(ctx, k, `0`))
	}
	require.NoError(t, store.Set(ctx, "b", `1`))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, keys)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	store, path := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "kept", `{"v":true}`))

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	val, err := reopened.Get(ctx, "kept")
	require.NoError(t, err)
	assert.Equal(t, `{"v":true}`, val)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	var name string
	require.NoError(t, db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'presets'`).Scan(&name))
	assert.Equal(t, "presets", name)
}

func TestSQLiteStore_UnavailableAfterClose(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	assert.False(t, store.Available(context.Background()))
	var nilStore *Store
	assert.False(t, nilStore.Available(context.Background()))
	assert.NoError(t, nilStore.Close())
}
