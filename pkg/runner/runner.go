package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aretw0/hostbridge/internal/logging"
	"github.com/aretw0/hostbridge/pkg/domain"
	"github.com/aretw0/hostbridge/pkg/ports"
)

var (
	// ErrStopped is returned when the loop is no longer running.
	ErrStopped = errors.New("runner stopped")
	// ErrAlreadyRunning is returned by a second concurrent Run.
	ErrAlreadyRunning = errors.New("runner already running")
)

// Dispatcher handles one message. The router implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg domain.Message, reply ports.Outbox) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, msg domain.Message, reply ports.Outbox) error

// Dispatch calls f.
func (f DispatcherFunc) Dispatch(ctx context.Context, msg domain.Message, reply ports.Outbox) error {
	return f(ctx, msg, reply)
}

// FrameFlusher runs pending frame callbacks.
type FrameFlusher interface {
	Flush() int
}

type job struct {
	ctx   context.Context
	msg   domain.Message
	reply ports.Outbox
	done  chan error
	// barrier jobs carry no message and only signal done.
	barrier bool
}

// Runner is the single-threaded host loop.
type Runner struct {
	dispatcher Dispatcher
	frames     FrameFlusher
	interval   time.Duration
	inboxSize  int
	middleware []Middleware
	logger     *slog.Logger

	inbox   chan job
	stopped chan struct{}
	running atomic.Bool
}

// New creates a Runner around d.
func New(d Dispatcher, opts ...Option) *Runner {
	r := &Runner{
		dispatcher: d,
		interval:   DefaultFrameInterval,
		inboxSize:  DefaultInboxSize,
		logger:     logging.NewNop(),
		stopped:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.inbox = make(chan job, r.inboxSize)
	r.dispatcher = Chain(r.middleware...)(r.dispatcher)
	return r
}

// Run processes messages and frames until ctx is cancelled.
// Messages still in the inbox at that point are dropped.
func (r *Runner) Run(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(r.stopped)

	var tick <-chan time.Time
	if r.frames != nil {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	r.logger.Debug("runner started", "frame_interval", r.interval)
	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("runner stopped", "pending", len(r.inbox))
			return nil
		case <-tick:
			r.frames.Flush()
		case j := <-r.inbox:
			r.handle(j)
		}
	}
}

func (r *Runner) handle(j job) {
	if j.barrier {
		j.done <- nil
		return
	}
	err := r.dispatcher.Dispatch(j.ctx, j.msg, j.reply)
	if j.done != nil {
		j.done <- err
		return
	}
	if err != nil {
		r.logger.Warn("dispatch failed", "channel", j.msg.Channel(), "error", err)
	}
}

// Stopped is closed once Run has returned.
func (r *Runner) Stopped() <-chan struct{} {
	return r.stopped
}

// Submit enqueues msg without waiting for it to be handled.
// Responses, if any, are delivered to reply from the loop goroutine.
func (r *Runner) Submit(ctx context.Context, msg domain.Message, reply ports.Outbox) error {
	return r.enqueue(ctx, job{ctx: context.WithoutCancel(ctx), msg: msg, reply: reply})
}

// Call enqueues msg and waits until it has been handled, returning the
// dispatch error. It must not be called from inside a handler.
func (r *Runner) Call(ctx context.Context, msg domain.Message, reply ports.Outbox) error {
	done := make(chan error, 1)
	if err := r.enqueue(ctx, job{ctx: ctx, msg: msg, reply: reply, done: done}); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-r.stopped:
		return ErrStopped
	}
}

// Sync waits until every message enqueued before it has been handled.
func (r *Runner) Sync(ctx context.Context) error {
	done := make(chan error, 1)
	if err := r.enqueue(ctx, job{ctx: ctx, barrier: true, done: done}); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-r.stopped:
		return ErrStopped
	}
}

// SubmitEnvelope decodes env and submits the message.
func (r *Runner) SubmitEnvelope(ctx context.Context, env domain.Envelope, reply ports.Outbox) error {
	msg, err := domain.Decode(env)
	if err != nil {
		return fmt.Errorf("failed to decode envelope: %w", err)
	}
	return r.Submit(ctx, msg, reply)
}

func (r *Runner) enqueue(ctx context.Context, j job) error {
	if j.msg == nil && !j.barrier {
		return fmt.Errorf("%w: nil message", domain.ErrMalformedPayload)
	}
	select {
	case <-r.stopped:
		return ErrStopped
	default:
	}
	select {
	case r.inbox <- j:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-r.stopped:
		return ErrStopped
	}
}
