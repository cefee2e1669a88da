package runner

import (
	"log/slog"
	"time"
)

// DefaultInboxSize is the default number of messages buffered before Submit blocks.
const DefaultInboxSize = 64

// DefaultFrameInterval approximates a 60Hz display refresh.
const DefaultFrameInterval = 16 * time.Millisecond

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithFrames sets the frame queue flushed on every tick.
func WithFrames(frames FrameFlusher) Option {
	return func(r *Runner) {
		r.frames = frames
	}
}

// WithFrameInterval sets the tick period. Non-positive values keep the default.
func WithFrameInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithInboxSize sets the inbox capacity.
func WithInboxSize(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.inboxSize = n
		}
	}
}

// WithMiddleware wraps the dispatcher. The first middleware is the outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(r *Runner) {
		r.middleware = append(r.middleware, mw...)
	}
}
