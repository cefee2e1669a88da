package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/hostbridge/pkg/domain"
	"github.com/aretw0/hostbridge/pkg/ports"
)

// Store operation names reported to a Recorder.
const (
	OpGet    = "get"
	OpSet    = "set"
	OpRemove = "remove"
	OpKeys   = "keys"
)

// Recorder receives one observation per store call.
// A missing key on Get is reported as outcome "not_found", not as an error.
type Recorder interface {
	ObserveStoreOp(op, outcome string, d time.Duration)
}

type instrumentation struct {
	passthrough
	rec Recorder
}

// NewInstrumentationMiddleware reports every store call to rec.
func NewInstrumentationMiddleware(rec Recorder) Middleware {
	return func(next ports.KVStore) ports.KVStore {
		return &instrumentation{passthrough: passthrough{next: next}, rec: rec}
	}
}

func (m *instrumentation) observe(op string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, domain.ErrKeyNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	m.rec.ObserveStoreOp(op, outcome, time.Since(start))
}

func (m *instrumentation) Get(ctx context.Context, key string) (string, error) {
	start := time.Now()
	v, err := m.next.Get(ctx, key)
	m.observe(OpGet, start, err)
	return v, err
}

func (m *instrumentation) Set(ctx context.Context, key string, value string) error {
	start := time.Now()
	err := m.next.Set(ctx, key, value)
	m.observe(OpSet, start, err)
	return err
}

func (m *instrumentation) Remove(ctx context.Context, key string) error {
	start := time.Now()
	err := m.next.Remove(ctx, key)
	m.observe(OpRemove, start, err)
	return err
}

func (m *instrumentation) Keys(ctx context.Context) ([]string, error) {
	start := time.Now()
	keys, err := m.next.Keys(ctx)
	m.observe(OpKeys, start, err)
	return keys, err
}
