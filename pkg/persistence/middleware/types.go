package middleware

import (
	"context"

	"github.com/aretw0/hostbridge/pkg/ports"
)

// Middleware allows wrapping a KVStore to add behavior.
type Middleware func(ports.KVStore) ports.KVStore

// Apply wraps store with mws. The first middleware is the outermost.
func Apply(store ports.KVStore, mws ...Middleware) ports.KVStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}

// passthrough forwards everything to next, including availability.
type passthrough struct {
	next ports.KVStore
}

func (p passthrough) Get(ctx context.Context, key string) (string, error) {
	return p.next.Get(ctx, key)
}

func (p passthrough) Set(ctx context.Context, key string, value string) error {
	return p.next.Set(ctx, key, value)
}

func (p passthrough) Remove(ctx context.Context, key string) error {
	return p.next.Remove(ctx, key)
}

func (p passthrough) Keys(ctx context.Context) ([]string, error) {
	return p.next.Keys(ctx)
}

func (p passthrough) Available(ctx context.Context) bool {
	return ports.IsAvailable(ctx, p.next)
}
