// Package stdio serves the channel protocol as JSON lines over a pair of
// streams, typically stdin and stdout.
package stdio

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/hostbridge/internal/logging"
	"github.com/aretw0/hostbridge/pkg/domain"
	"github.com/aretw0/hostbridge/pkg/ports"
	"github.com/aretw0/hostbridge/pkg/runner"
)

// Bridge is the part of the host the session drives.
type Bridge interface {
	Submit(ctx context.Context, msg domain.Message, reply ports.Outbox) error
	Boot(ctx context.Context) domain.Boot
}

// Session reads one envelope per line from In and writes one per line to Out.
type Session struct {
	bridge Bridge
	in     io.Reader
	out    io.Writer
	mu     sync.Mutex
	logger *slog.Logger
}

// Option configures the Session.
type Option func(*Session)

// WithLogger configures the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession creates a session over in and out.
func NewSession(bridge Bridge, in io.Reader, out io.Writer, opts ...Option) *Session {
	s := &Session{
		bridge: bridge,
		in:     in,
		out:    out,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send implements ports.Outbox.
func (s *Session) Send(ctx context.Context, resp domain.Response) error {
	frame, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.out.Write(append(frame, '\n')); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// Serve writes the boot frame and then submits every line read until the
// input ends or ctx is cancelled. Malformed lines are logged and skipped.
func (s *Session) Serve(ctx context.Context) error {
	if err := s.Send(ctx, domain.BootResponse(s.bridge.Boot(ctx))); err != nil {
		return err
	}

	r := bufio.NewReaderSize(s.in, 64*1024)
	for {
		line, size, err := readLine(r, runner.MaxFrameSize())
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}
		if ctx.Err() != nil {
			return nil
		}
		if size == 0 {
			continue
		}
		if size > len(line) {
			s.logger.Warn("frame rejected", "error", runner.ErrFrameTooLarge, "size", size)
			continue
		}
		if err := runner.ValidateFrame(line); err != nil {
			s.logger.Warn("frame rejected", "error", err, "size", size)
			continue
		}

		var env domain.Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			s.logger.Warn("invalid envelope", "error", err)
			continue
		}
		msg, err := domain.Decode(env)
		if err != nil {
			s.logger.Warn("message dropped", "channel", env.Channel, "error", err)
			continue
		}
		if err := s.bridge.Submit(ctx, msg, s); err != nil {
			if errors.Is(err, runner.ErrStopped) {
				return nil
			}
			s.logger.Error("submit failed", "channel", msg.Channel(), "error", err)
		}
	}
}

// readLine reads one line and reports its full size. Bytes past limit are
// consumed but not kept, so an oversized line comes back truncated with
// size > len(line).
func readLine(r *bufio.Reader, limit int) ([]byte, int, error) {
	var (
		line []byte
		size int
	)
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			if size > 0 && errors.Is(err, io.EOF) {
				return line, size, nil
			}
			return nil, 0, err
		}
		if size+len(chunk) <= limit {
			line = append(line, chunk...)
		}
		size += len(chunk)
		if !isPrefix {
			return line, size, nil
		}
	}
}
