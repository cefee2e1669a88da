// Package diagnostics forwards log payloads from the UI core to the host console.
package diagnostics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/hostbridge/internal/logging"
	"github.com/aretw0/hostbridge/pkg/ports"
)

// Forwarder is a best-effort front for a ports.DiagnosticSink.
type Forwarder struct {
	sink   ports.DiagnosticSink
	logger *slog.Logger
}

// Option configures the Forwarder.
type Option func(*Forwarder)

// WithLogger configures a logger for the Forwarder.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Forwarder) {
		f.logger = logger
	}
}

// NewForwarder creates a Forwarder for sink.
func NewForwarder(sink ports.DiagnosticSink, opts ...Option) *Forwarder {
	f := &Forwarder{
		sink:   sink,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Log hands payload to the sink unmodified. Sink failures are dropped.
func (f *Forwarder) Log(ctx context.Context, payload json.RawMessage) {
	if f.sink == nil {
		return
	}
	if err := f.sink.Log(ctx, payload); err != nil {
		f.logger.Debug("diagnostic sink failed", "error", err)
	}
}

// SlogSink writes payloads as structured log records.
type SlogSink struct {
	Logger *slog.Logger
	Level  slog.Level
}

// Log implements ports.DiagnosticSink.
func (s SlogSink) Log(ctx context.Context, payload json.RawMessage) error {
	if s.Logger == nil {
		return fmt.Errorf("slog sink has no logger")
	}
	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		s.Logger.Log(ctx, s.Level, "ui", "raw", string(payload))
		return nil
	}
	s.Logger.Log(ctx, s.Level, "ui", "payload", v)
	return nil
}

// WriterSink writes one compact JSON document per line, like a console.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a WriterSink on w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Log implements ports.DiagnosticSink.
func (s *WriterSink) Log(ctx context.Context, payload json.RawMessage) error {
	var buf bytes.Buffer
	if len(payload) == 0 {
		buf.WriteString("null")
	} else if err := json.Compact(&buf, payload); err != nil {
		return fmt.Errorf("invalid diagnostic payload: %w", err)
	}
	buf.WriteByte('\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write diagnostic: %w", err)
	}
	return nil
}
