package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/hostbridge/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "hostbridge:"

// Store implements ports.KVStore using Redis.
//
// Records live under "<prefix>record:<key>". A sorted set "<prefix>index" keeps
// the keys in insertion order, scored by a monotonic sequence "<prefix>seq".
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for records. Zero means no expiration.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: defaultPrefix,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(k string) string {
	return s.prefix + "record:" + k
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

func (s *Store) seqKey() string {
	return s.prefix + "seq"
}

// Available implements ports.Availability by pinging the server.
func (s *Store) Available(ctx context.Context) bool {
	return s.client.Ping(ctx).Err() == nil
}

// Get retrieves the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return "", domain.ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to get from redis: %w", err)
	}
	return val, nil
}

// Set stores value under key. Overwriting keeps the original index position.
func (s *Store) Set(ctx context.Context, key string, value string) error {
	seq, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate sequence: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(key), value, s.ttl)
	pipe.ZAddNX(ctx, s.indexKey(), backend.Z{
		Score:  float64(seq),
		Member: key,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Remove deletes key and its index entry.
func (s *Store) Remove(ctx context.Context, key string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(key))
	pipe.ZRem(ctx, s.indexKey(), key)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// Keys returns the indexed keys in insertion order.
// Index entries whose record has expired are pruned lazily.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	keys, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	if len(keys) == 0 {
		return []string{}, nil
	}
	if s.ttl == 0 {
		return keys, nil
	}

	pipe := s.client.Pipeline()
	checks := make([]*backend.IntCmd, len(keys))
	for i, k := range keys {
		checks[i] = pipe.Exists(ctx, s.key(k))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to check keys: %w", err)
	}

	live := make([]string, 0, len(keys))
	var expired []any
	for i, k := range keys {
		if checks[i].Val() > 0 {
			live = append(live, k)
		} else {
			expired = append(expired, k)
		}
	}

	if len(expired) > 0 {
		if err := s.client.ZRem(ctx, s.indexKey(), expired...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune expired keys: %w", err)
		}
	}

	return live, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
