package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/hostbridge/pkg/adapters/redis"
	"github.com/aretw0/hostbridge/pkg/domain"
	"github.com/aretw0/hostbridge/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewFromClient(client, opts...), mr
}

func TestRedisStore_Contract(t *testing.T) {
	store, _ := newStore(t)
	ports.RunKVStoreContract(t, store)
}

func TestRedisStore_InsertionOrder(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	for _, k := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, store.Set(ctx, k, `{}`))
	}
	require.NoError(t, store.Set(ctx, "zeta", `{"v":2}`))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, keys)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	store, mr := newStore(t, redis.WithTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "short-lived", `"v"`))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Contains(t, keys, "short-lived")

	mr.FastForward(2 * time.Second)

	_, err = store.Get(ctx, "short-lived")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)

	keys, err = store.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	// Index entry pruned lazily.
	members, err := mr.ZMembers("hostbridge:index")
	if err == nil {
		assert.Empty(t, members)
	}
}

func TestRedisStore_Prefix(t *testing.T) {
	store, mr := newStore(t, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "my-preset", `{"a":1}`))

	assert.True(t, mr.Exists("custom:app:record:my-preset"), "Expected record with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"my-preset"}, keys)
}

func TestRedisStore_IndexKeyIsNotARecord(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "index", `"not the index"`))
	require.NoError(t, store.Set(ctx, "other", `1`))

	val, err := store.Get(ctx, "index")
	require.NoError(t, err)
	assert.Equal(t, `"not the index"`, val)

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"index", "other"}, keys)
}

func TestRedisStore_Availability(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()
	assert.True(t, ports.IsAvailable(ctx, store))

	mr.Close()
	assert.False(t, ports.IsAvailable(ctx, store))
}
