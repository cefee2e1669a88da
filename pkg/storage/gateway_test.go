package storage_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/hostbridge/pkg/adapters/memory"
	"github.com/aretw0/hostbridge/pkg/domain"
	"github.com/aretw0/hostbridge/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateway_RoundTrip(t *testing.T) {
	ctx := context.Background()
	gw := storage.New(memory.NewStore())

	saved := gw.Save(ctx, "p1", json.RawMessage(`{ "size" : 3, "tags": ["a", "b"] }`))
	key, ok := saved.Value()
	require.True(t, ok, saved.Error())
	assert.Equal(t, "p1", key)

	loaded := gw.Load(ctx, "p1")
	preset, ok := loaded.Value()
	require.True(t, ok, loaded.Error())
	assert.Equal(t, "p1", preset.Key)
	assert.JSONEq(t, `{"size":3,"tags":["a","b"]}`, string(preset.Payload))
	// Stored compactly.
	assert.Equal(t, `{"size":3,"tags":["a","b"]}`, string(preset.Payload))
}

func TestGateway_NotFound(t *testing.T) {
	gw := storage.New(memory.NewStore())
	res := gw.Load(context.Background(), "never-saved")
	assert.False(t, res.IsOk())
	assert.Equal(t, "Key was not found", res.Error())
}

func TestGateway_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	gw := storage.New(memory.NewStore())
	require.True(t, gw.Save(ctx, "k", json.RawMessage(`1`)).IsOk())

	for range 2 {
		res := gw.Delete(ctx, "k")
		key, ok := res.Value()
		require.True(t, ok)
		assert.Equal(t, "k", key)
	}
	assert.Equal(t, domain.MsgKeyNotFound, gw.Load(ctx, "k").Error())
}

func TestGateway_ListKeySet(t *testing.T) {
	ctx := context.Background()
	gw := storage.New(memory.NewStore())

	empty, ok := gw.List(ctx).Value()
	require.True(t, ok)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, k := range []string{"a", "b", "c"} {
		require.True(t, gw.Save(ctx, k, json.RawMessage(`{}`)).IsOk())
	}
	require.True(t, gw.Delete(ctx, "b").IsOk())

	keys, ok := gw.List(ctx).Value()
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"a", "c"}, keys)
}

func TestGateway_LastWriterWins(t *testing.T) {
	ctx := context.Background()
	gw := storage.New(memory.NewStore())

	require.True(t, gw.Save(ctx, "k", json.RawMessage(`"first"`)).IsOk())
	require.True(t, gw.Save(ctx, "k", json.RawMessage(`"second"`)).IsOk())

	preset, ok := gw.Load(ctx, "k").Value()
	require.True(t, ok)
	assert.Equal(t, `"second"`, string(preset.Payload))
}

func TestGateway_Unavailable(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Set(ctx, "existing", `1`))
	store.SetAvailable(false)
	gw := storage.New(store)

	results := []domain.Outcome{
		gw.Save(ctx, "new", json.RawMessage(`2`)),
		gw.Load(ctx, "existing"),
		gw.List(ctx),
		gw.Delete(ctx, "existing"),
	}
	for _, r := range results {
		assert.False(t, r.IsOk())
		assert.Equal(t, "Localstorage not available", r.Error())
	}

	// Nothing was touched.
	assert.Equal(t, 1, store.Len())
	store.SetAvailable(true)
	v, err := store.Get(ctx, "existing")
	require.NoError(t, err)
	assert.Equal(t, `1`, v)
}

func TestGateway_NilStoreIsUnavailable(t *testing.T) {
	gw := storage.New(nil)
	assert.False(t, gw.Available(context.Background()))
	assert.Equal(t, domain.MsgStorageUnavailable, gw.List(context.Background()).Error())
}

func TestGateway_CorruptedRecord(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Set(ctx, "bad", `{not json`))

	res := storage.New(store).Load(ctx, "bad")
	assert.False(t, res.IsOk())
	assert.Equal(t, domain.MsgCorruptedRecord, res.Error())
}

func TestGateway_SaveRejectsInvalidPayload(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	res := storage.New(store).Save(ctx, "k", json.RawMessage(`{oops`))
	assert.False(t, res.IsOk())
	assert.Contains(t, res.Error(), domain.MsgStorageFailed)
	assert.Equal(t, 0, store.Len())
}

func TestGateway_SaveNilPayloadStoresNull(t *testing.T) {
	ctx := context.Background()
	gw := storage.New(memory.NewStore())

	require.True(t, gw.Save(ctx, "k", nil).IsOk())
	preset, ok := gw.Load(ctx, "k").Value()
	require.True(t, ok)
	assert.Equal(t, "null", string(preset.Payload))
}

type brokenStore struct{ err error }

func (b brokenStore) Get(context.Context, string) (string, error)  { return "", b.err }
func (b brokenStore) Set(context.Context, string, string) error    { return b.err }
func (b brokenStore) Remove(context.Context, string) error         { return b.err }
func (b brokenStore) Keys(context.Context) ([]string, error)       { return nil, b.err }

func TestGateway_StoreErrorsBecomeFailures(t *testing.T) {
	ctx := context.Background()
	gw := storage.New(brokenStore{err: errors.New("disk on fire")})

	results := []domain.Outcome{
		gw.Save(ctx, "k", json.RawMessage(`1`)),
		gw.Load(ctx, "k"),
		gw.List(ctx),
		gw.Delete(ctx, "k"),
	}
	for _, r := range results {
		assert.False(t, r.IsOk())
		assert.Equal(t, "Storage operation failed: disk on fire", r.Error())
	}
}

func TestGateway_Boot(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	gw := storage.New(store)
	require.True(t, gw.Save(ctx, "one", json.RawMessage(`1`)).IsOk())

	boot := gw.Boot(ctx)
	assert.True(t, boot.StorageAvailable)
	assert.Equal(t, []string{"one"}, boot.PresetKeys)

	store.SetAvailable(false)
	boot = gw.Boot(ctx)
	assert.False(t, boot.StorageAvailable)
	assert.Empty(t, boot.PresetKeys)

	boot = storage.New(brokenStore{err: errors.New("x")}).Boot(ctx)
	assert.True(t, boot.StorageAvailable)
	assert.Empty(t, boot.PresetKeys)
}
