// Package router binds outbound channels to host handlers and handler results
// to the matching inbound channels.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/hostbridge/internal/logging"
	"github.com/aretw0/hostbridge/pkg/domain"
	"github.com/aretw0/hostbridge/pkg/ports"
)

var (
	// ErrUnknownChannel is returned by New for channel names outside the protocol.
	ErrUnknownChannel = domain.ErrUnknownChannel
	// ErrMissingCollaborator is returned by New when an enabled channel has no handler dependency.
	ErrMissingCollaborator = errors.New("missing collaborator")
	// ErrChannelNotBound is returned by Dispatch for channels disabled at construction.
	ErrChannelNotBound = errors.New("channel not bound")
)

// Dialogs opens and closes modal surfaces.
type Dialogs interface {
	Open(ctx context.Context, domID string)
	Close(ctx context.Context, domID string)
}

// Exporter saves element markup as a file.
type Exporter interface {
	ExportSvg(ctx context.Context, domID, fileName string)
}

// Diagnostics receives UI log payloads.
type Diagnostics interface {
	Log(ctx context.Context, payload json.RawMessage)
}

// Storage serves the preset request/response channels.
type Storage interface {
	Save(ctx context.Context, key string, payload json.RawMessage) domain.Result[string]
	Load(ctx context.Context, key string) domain.Result[domain.Preset]
	List(ctx context.Context) domain.Result[[]string]
	Delete(ctx context.Context, key string) domain.Result[string]
}

type handler func(ctx context.Context, msg domain.Message) (*domain.Response, error)

// Router dispatches typed messages. The binding table is fixed at construction
// and the Router holds no other mutable state.
type Router struct {
	handlers map[domain.Channel]handler
	order    []domain.Channel
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
}

type config struct {
	channels    []domain.Channel
	dialogs     Dialogs
	exporter    Exporter
	diagnostics Diagnostics
	storage     Storage
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
}

// Option configures the Router.
type Option func(*config)

// WithChannels limits the bound channels. Without it every outbound channel is bound.
func WithChannels(channels ...domain.Channel) Option {
	return func(c *config) {
		c.channels = channels
	}
}

// WithDialogs sets the handler for openDialog and closeDialog.
func WithDialogs(d Dialogs) Option {
	return func(c *config) {
		c.dialogs = d
	}
}

// WithExporter sets the handler for downloadSvg.
func WithExporter(e Exporter) Option {
	return func(c *config) {
		c.exporter = e
	}
}

// WithDiagnostics sets the handler for log.
func WithDiagnostics(d Diagnostics) Option {
	return func(c *config) {
		c.diagnostics = d
	}
}

// WithStorage sets the handler for the preset channels.
func WithStorage(s Storage) Option {
	return func(c *config) {
		c.storage = s
	}
}

// WithHooks registers lifecycle hooks. Multiple calls are merged.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = c.hooks.Merge(h)
	}
}

// WithLogger configures a logger for the Router.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// New builds the binding table. It fails if a channel is unknown or its
// collaborator was not provided.
func New(opts ...Option) (*Router, error) {
	cfg := &config{
		channels: domain.OutboundChannels(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	r := &Router{
		handlers: make(map[domain.Channel]handler, len(cfg.channels)),
		hooks:    cfg.hooks,
		logger:   cfg.logger,
	}

	for _, ch := range cfg.channels {
		if !domain.IsOutbound(ch) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, ch)
		}
		if _, dup := r.handlers[ch]; dup {
			continue
		}
		h, err := bind(ch, cfg)
		if err != nil {
			return nil, err
		}
		r.handlers[ch] = h
		r.order = append(r.order, ch)
	}

	return r, nil
}

func bind(ch domain.Channel, cfg *config) (handler, error) {
	missing := func(what string) error {
		return fmt.Errorf("%w: %s requires %s", ErrMissingCollaborator, ch, what)
	}

	switch ch {
	case domain.ChannelOpenDialog, domain.ChannelCloseDialog:
		if cfg.dialogs == nil {
			return nil, missing("a dialog controller")
		}
		return dialogHandler(cfg.dialogs), nil
	case domain.ChannelDownloadSvg:
		if cfg.exporter == nil {
			return nil, missing("an exporter")
		}
		return exportHandler(cfg.exporter), nil
	case domain.ChannelLog:
		if cfg.diagnostics == nil {
			return nil, missing("a diagnostic sink")
		}
		return logHandler(cfg.diagnostics), nil
	case domain.ChannelSavePreset, domain.ChannelListPresets, domain.ChannelLoadPreset, domain.ChannelDeletePreset:
		if cfg.storage == nil {
			return nil, missing("a storage gateway")
		}
		return storageHandler(cfg.storage), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, ch)
}

// Channels returns the bound channels in binding order.
func (r *Router) Channels() []domain.Channel {
	out := make([]domain.Channel, len(r.order))
	copy(out, r.order)
	return out
}

// Bound reports whether ch has a handler.
func (r *Router) Bound(ch domain.Channel) bool {
	_, ok := r.handlers[ch]
	return ok
}

// Dispatch runs the handler for msg. For request/response channels exactly one
// response is sent on reply before Dispatch returns.
func (r *Router) Dispatch(ctx context.Context, msg domain.Message, reply ports.Outbox) error {
	if msg == nil {
		return fmt.Errorf("%w: nil message", domain.ErrMalformedPayload)
	}
	ch := msg.Channel()
	h, ok := r.handlers[ch]
	if !ok {
		return fmt.Errorf("%w: %s", ErrChannelNotBound, ch)
	}

	start := time.Now()
	resp, err := h(ctx, msg)

	if r.hooks.OnDispatch != nil {
		r.hooks.OnDispatch(ctx, &domain.DispatchEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventDispatch},
			Channel:   ch,
			Duration:  time.Since(start),
			Err:       err,
		})
	}
	if err != nil {
		return err
	}
	if resp == nil {
		return nil
	}

	r.emit(ctx, *resp, reply)
	return nil
}

func (r *Router) emit(ctx context.Context, resp domain.Response, reply ports.Outbox) {
	if r.hooks.OnResponse != nil {
		ev := &domain.ResponseEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventResponse},
			Channel:   resp.Channel,
		}
		if o, ok := resp.Result.(domain.Outcome); ok {
			ev.OK = o.IsOk()
			ev.Error = o.Error()
		}
		r.hooks.OnResponse(ctx, ev)
	}

	if reply == nil {
		r.logger.Warn("response dropped: no reply outbox", "channel", resp.Channel)
		return
	}
	if err := reply.Send(ctx, resp); err != nil {
		r.logger.Error("failed to deliver response", "channel", resp.Channel, "error", err)
	}
}
