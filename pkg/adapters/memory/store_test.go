package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/hostbridge/pkg/adapters/memory"
	"github.com/aretw0/hostbridge/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunKVStoreContract(t, store)
}

func TestMemoryStore_InsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	for _, k := range []string{"c", "a", "b"} {
		require.NoError(t, store.Set(ctx, k, "1"))
	}
	// Overwrite keeps position.
	require.NoError(t, store.Set(ctx, "c", "2"))
	require.NoError(t, store.Remove(ctx, "a"))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, keys)
	assert.Equal(t, 2, store.Len())
}

func TestMemoryStore_Availability(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	assert.True(t, ports.IsAvailable(ctx, store))

	store.SetAvailable(false)
	assert.False(t, ports.IsAvailable(ctx, store))

	store.SetAvailable(true)
	assert.True(t, ports.IsAvailable(ctx, store))
}
