package hostbridge

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/hostbridge/internal/logging"
	"github.com/aretw0/hostbridge/pkg/adapters/dom"
	"github.com/aretw0/hostbridge/pkg/adapters/download"
	"github.com/aretw0/hostbridge/pkg/adapters/frame"
	"github.com/aretw0/hostbridge/pkg/adapters/memory"
	"github.com/aretw0/hostbridge/pkg/diagnostics"
	"github.com/aretw0/hostbridge/pkg/dialog"
	"github.com/aretw0/hostbridge/pkg/domain"
	"github.com/aretw0/hostbridge/pkg/export"
	"github.com/aretw0/hostbridge/pkg/ports"
	"github.com/aretw0/hostbridge/pkg/router"
	"github.com/aretw0/hostbridge/pkg/runner"
	"github.com/aretw0/hostbridge/pkg/storage"
)

// Bridge is the high-level entry point: it owns the router, the storage
// gateway, the host controllers and the runner loop that drives them.
type Bridge struct {
	store      ports.KVStore
	document   *dom.Document
	elements   ports.ElementRegistry
	downloader ports.Downloader
	sink       ports.DiagnosticSink
	channels   []domain.Channel
	hooks      domain.LifecycleHooks
	interval   time.Duration
	middleware []runner.Middleware
	logger     *slog.Logger

	frames  *frame.Queue
	gateway *storage.Gateway
	router  *router.Router
	runner  *runner.Runner
}

// Option defines a functional option for configuring the Bridge.
type Option func(*Bridge)

// WithStore sets the preset store. Defaults to an in-memory store.
func WithStore(store ports.KVStore) Option {
	return func(b *Bridge) {
		b.store = store
	}
}

// WithDocument sets the document dialogs and exports operate on.
func WithDocument(doc *dom.Document) Option {
	return func(b *Bridge) {
		b.document = doc
	}
}

// WithElements replaces the element registry. It takes precedence over
// WithDocument for element lookups.
func WithElements(elements ports.ElementRegistry) Option {
	return func(b *Bridge) {
		b.elements = elements
	}
}

// WithDownloader sets the download facility used by SVG export.
func WithDownloader(d ports.Downloader) Option {
	return func(b *Bridge) {
		b.downloader = d
	}
}

// WithDiagnosticSink sets where UI log payloads go. Defaults to the logger.
func WithDiagnosticSink(sink ports.DiagnosticSink) Option {
	return func(b *Bridge) {
		b.sink = sink
	}
}

// WithChannels restricts the bound outbound channels. Empty means all.
func WithChannels(channels ...domain.Channel) Option {
	return func(b *Bridge) {
		b.channels = append(b.channels, channels...)
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Bridge) {
		b.hooks = b.hooks.Merge(hooks)
	}
}

// WithFrameInterval sets the frame period of the runner loop.
func WithFrameInterval(d time.Duration) Option {
	return func(b *Bridge) {
		b.interval = d
	}
}

// WithMiddleware wraps message dispatch, after panic recovery and logging.
func WithMiddleware(mw ...runner.Middleware) Option {
	return func(b *Bridge) {
		b.middleware = append(b.middleware, mw...)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// New wires a Bridge. It fails if a configured channel is unknown.
func New(opts ...Option) (*Bridge, error) {
	b := &Bridge{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.store == nil {
		b.store = memory.NewStore()
	}
	if b.document == nil {
		b.document = dom.Empty()
	}
	if b.elements == nil {
		b.elements = dom.NewRegistry(b.document)
	}
	if b.downloader == nil {
		b.downloader = download.NewSpool(filepath.Join(os.TempDir(), "hostbridge-spool"), ".")
	}
	if b.sink == nil {
		b.sink = diagnostics.SlogSink{Logger: b.logger, Level: slog.LevelInfo}
	}

	b.frames = frame.NewQueue()
	b.gateway = storage.New(b.store, storage.WithLogger(b.logger))

	routerOpts := []router.Option{
		router.WithDialogs(dialog.New(b.elements, b.frames, dialog.WithLogger(b.logger))),
		router.WithExporter(export.New(b.elements, b.downloader, export.WithLogger(b.logger))),
		router.WithDiagnostics(diagnostics.NewForwarder(b.sink, diagnostics.WithLogger(b.logger))),
		router.WithStorage(b.gateway),
		router.WithHooks(b.hooks),
		router.WithLogger(b.logger),
	}
	if len(b.channels) > 0 {
		routerOpts = append(routerOpts, router.WithChannels(b.channels...))
	}
	r, err := router.New(routerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build router: %w", err)
	}
	b.router = r

	mw := append([]runner.Middleware{
		runner.RecoverMiddleware(b.logger),
		runner.LoggingMiddleware(b.logger),
	}, b.middleware...)
	b.runner = runner.New(r,
		runner.WithFrames(b.frames),
		runner.WithFrameInterval(b.interval),
		runner.WithMiddleware(mw...),
		runner.WithLogger(b.logger),
	)
	return b, nil
}

// Run drives the message loop until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	return b.runner.Run(ctx)
}

// Submit enqueues msg; any response is sent to reply from the loop.
func (b *Bridge) Submit(ctx context.Context, msg domain.Message, reply ports.Outbox) error {
	return b.runner.Submit(ctx, msg, reply)
}

// Call enqueues msg and waits until it has been handled.
func (b *Bridge) Call(ctx context.Context, msg domain.Message, reply ports.Outbox) error {
	return b.runner.Call(ctx, msg, reply)
}

// Sync waits until every message submitted so far has been handled.
func (b *Bridge) Sync(ctx context.Context) error {
	return b.runner.Sync(ctx)
}

// Boot returns the startup snapshot handed to the UI core.
func (b *Bridge) Boot(ctx context.Context) domain.Boot {
	return b.gateway.Boot(ctx)
}

// Bound reports whether ch is served.
func (b *Bridge) Bound(ch domain.Channel) bool {
	return b.router.Bound(ch)
}

// Channels lists the bound outbound channels.
func (b *Bridge) Channels() []domain.Channel {
	return b.router.Channels()
}

// Document returns the document dialogs and exports operate on.
func (b *Bridge) Document() *dom.Document {
	return b.document
}

// Storage returns the storage gateway, for callers that bypass the loop.
func (b *Bridge) Storage() *storage.Gateway {
	return b.gateway
}

// Stopped is closed once Run has returned.
func (b *Bridge) Stopped() <-chan struct{} {
	return b.runner.Stopped()
}
