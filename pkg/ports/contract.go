package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/hostbridge/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunKVStoreContract runs a suite of tests to verify that a KVStore implementation
// adheres to the defined interface contract.
func RunKVStoreContract(t *testing.T, store KVStore) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405")

	t.Run("Set and Get", func(t *testing.T) {
		key := prefix + "-roundtrip"
		require.NoError(t, store.Set(ctx, key, `{"foo":"bar"}`), "Set should not return error")

		val, err := store.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, `{"foo":"bar"}`, val)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, prefix+"-missing")
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		key := prefix + "-overwrite"
		require.NoError(t, store.Set(ctx, key, `1`))
		require.NoError(t, store.Set(ctx, key, `2`))

		val, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, `2`, val, "last writer wins")

		keys, err := store.Keys(ctx)
		require.NoError(t, err)
		count := 0
		for _, k := range keys {
			if k == key {
				count++
			}
		}
		assert.Equal(t, 1, count, "overwritten key must be listed once")
	})

	t.Run("Remove", func(t *testing.T) {
		key := prefix + "-remove"
		require.NoError(t, store.Set(ctx, key, `"x"`))

		require.NoError(t, store.Remove(ctx, key), "Remove should not return error")

		_, err := store.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrKeyNotFound, "Get after Remove should return ErrKeyNotFound")

		assert.NoError(t, store.Remove(ctx, key), "Remove of a missing key is not an error")
	})

	t.Run("Keys", func(t *testing.T) {
		k1 := prefix + "-list-1"
		k2 := prefix + "-list-2"
		require.NoError(t, store.Set(ctx, k1, `1`))
		require.NoError(t, store.Set(ctx, k2, `2`))

		defer func() {
			_ = store.Remove(ctx, k1)
			_ = store.Remove(ctx, k2)
		}()

		keys, err := store.Keys(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, k1)
		assert.Contains(t, keys, k2)
	})

	t.Run("Keys With Awkward Names", func(t *testing.T) {
		key := prefix + "/nested key:ünïcode?"
		require.NoError(t, store.Set(ctx, key, `true`))
		defer func() { _ = store.Remove(ctx, key) }()

		val, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, `true`, val)

		keys, err := store.Keys(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, key)
	})
}
