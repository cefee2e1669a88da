package ports

import "context"

// KVStore is a string-keyed persistent store.
// Values are opaque strings; the storage gateway owns serialization.
type KVStore interface {
	// Get returns the value stored under key.
	// Returns domain.ErrKeyNotFound if the key does not exist.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Keys enumerates every stored key in host order.
	Keys(ctx context.Context) ([]string, error)
}

// Availability is implemented by stores whose presence can change with the host
// environment. Stores that do not implement it are always available.
type Availability interface {
	Available(ctx context.Context) bool
}

// IsAvailable reports whether store can be used right now.
func IsAvailable(ctx context.Context, store KVStore) bool {
	if store == nil {
		return false
	}
	if a, ok := store.(Availability); ok {
		return a.Available(ctx)
	}
	return true
}
