// Package storage mediates between the UI core and a persistent key/value store.
//
// Every operation returns a domain.Result. Store problems never escape as Go
// errors: they are logged and turned into failure results so each request gets
// exactly one response.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/hostbridge/internal/logging"
	"github.com/aretw0/hostbridge/pkg/domain"
	"github.com/aretw0/hostbridge/pkg/ports"
)

// Gateway wraps a ports.KVStore.
type Gateway struct {
	store  ports.KVStore
	logger *slog.Logger
}

// Option configures the Gateway.
type Option func(*Gateway)

// WithLogger configures a logger for the Gateway.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// New creates a Gateway. A nil store is permanently unavailable.
func New(store ports.KVStore, opts ...Option) *Gateway {
	g := &Gateway{
		store:  store,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Available reports whether the backing store can be used right now.
func (g *Gateway) Available(ctx context.Context) bool {
	return ports.IsAvailable(ctx, g.store)
}

// Save stores payload under key, replacing any previous record.
func (g *Gateway) Save(ctx context.Context, key string, payload json.RawMessage) domain.Result[string] {
	if !g.Available(ctx) {
		return domain.Fail[string](domain.MsgStorageUnavailable)
	}

	value, err := compact(payload)
	if err != nil {
		return failed[string](g.logger, "save", key, err)
	}

	if err := g.store.Set(ctx, key, value); err != nil {
		return failed[string](g.logger, "save", key, err)
	}
	return domain.Ok(key)
}

// Load returns the record stored under key.
func (g *Gateway) Load(ctx context.Context, key string) domain.Result[domain.Preset] {
	if !g.Available(ctx) {
		return domain.Fail[domain.Preset](domain.MsgStorageUnavailable)
	}

	value, err := g.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return domain.Fail[domain.Preset](domain.MsgKeyNotFound)
		}
		return failed[domain.Preset](g.logger, "load", key, err)
	}

	if !json.Valid([]byte(value)) {
		g.logger.Warn("stored value is not valid JSON", "key", key)
		return domain.Fail[domain.Preset](domain.MsgCorruptedRecord)
	}

	return domain.Ok(domain.Preset{Key: key, Payload: json.RawMessage(value)})
}

// List returns every stored key in host order. An empty store yields [].
func (g *Gateway) List(ctx context.Context) domain.Result[[]string] {
	if !g.Available(ctx) {
		return domain.Fail[[]string](domain.MsgStorageUnavailable)
	}

	keys, err := g.store.Keys(ctx)
	if err != nil {
		return failed[[]string](g.logger, "list", "", err)
	}
	if keys == nil {
		keys = []string{}
	}
	return domain.Ok(keys)
}

// Delete removes key if present. Deleting a missing key succeeds.
func (g *Gateway) Delete(ctx context.Context, key string) domain.Result[string] {
	if !g.Available(ctx) {
		return domain.Fail[string](domain.MsgStorageUnavailable)
	}

	if err := g.store.Remove(ctx, key); err != nil {
		return failed[string](g.logger, "delete", key, err)
	}
	return domain.Ok(key)
}

// Boot builds the startup snapshot. Keys are omitted when listing fails.
func (g *Gateway) Boot(ctx context.Context) domain.Boot {
	boot := domain.Boot{PresetKeys: []string{}}
	if !g.Available(ctx) {
		return boot
	}
	boot.StorageAvailable = true
	if keys, ok := g.List(ctx).Value(); ok {
		boot.PresetKeys = keys
	}
	return boot
}

func compact(payload json.RawMessage) (string, error) {
	if len(payload) == 0 {
		return "null", nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, payload); err != nil {
		return "", fmt.Errorf("payload is not valid JSON: %w", err)
	}
	return buf.String(), nil
}

func failed[T any](logger *slog.Logger, op, key string, err error) domain.Result[T] {
	logger.Error("storage operation failed", "op", op, "key", key, "error", err)
	return domain.Fail[T](fmt.Sprintf("%s: %v", domain.MsgStorageFailed, err))
}
