package cli

import (
	"fmt"

	"github.com/aretw0/hostbridge/internal/config"
	"github.com/aretw0/hostbridge/pkg/adapters/file"
	"github.com/aretw0/hostbridge/pkg/adapters/memory"
	"github.com/aretw0/hostbridge/pkg/adapters/redis"
	"github.com/aretw0/hostbridge/pkg/adapters/sqlite"
	"github.com/aretw0/hostbridge/pkg/persistence/middleware"
	"github.com/aretw0/hostbridge/pkg/ports"
)

// DefaultSQLitePath is used by the sqlite driver when no path is configured.
const DefaultSQLitePath = "hostbridge.db"

// OpenStore builds the configured store and its middleware chain. The returned
// close func releases driver resources and is never nil.
func OpenStore(cfg config.StoreConfig, rec middleware.Recorder) (ports.KVStore, func() error, error) {
	noop := func() error { return nil }

	var (
		store   ports.KVStore
		closeFn = noop
	)
	switch cfg.Driver {
	case config.DriverMemory, "":
		store = memory.NewStore()
	case config.DriverFile:
		store = file.New(cfg.Path)
	case config.DriverRedis:
		opts := []redis.Option{redis.WithTTL(cfg.Redis.TTL)}
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		store, closeFn = rs, rs.Close
	case config.DriverSQLite:
		path := cfg.Path
		if path == "" {
			path = DefaultSQLitePath
		}
		ss, err := sqlite.Open(path)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		store, closeFn = ss, ss.Close
	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}

	active, fallback, err := cfg.Keys()
	if err != nil {
		_ = closeFn()
		return nil, noop, err
	}

	var mws []middleware.Middleware
	if rec != nil {
		mws = append(mws, middleware.NewInstrumentationMiddleware(rec))
	}
	if active != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		}))
	}
	return middleware.Apply(store, mws...), closeFn, nil
}
