package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/hostbridge"
	"github.com/aretw0/hostbridge/internal/config"
	"github.com/aretw0/hostbridge/internal/logging"
	"github.com/aretw0/hostbridge/pkg/adapters/dom"
	"github.com/aretw0/hostbridge/pkg/adapters/download"
	"github.com/aretw0/hostbridge/pkg/diagnostics"
	"github.com/aretw0/hostbridge/pkg/observability"
	"github.com/aretw0/hostbridge/pkg/persistence/middleware"
	"github.com/aretw0/hostbridge/pkg/ports"
)

// Runtime is a Bridge assembled from configuration, plus what it owns.
type Runtime struct {
	Bridge  *hostbridge.Bridge
	Metrics *observability.Metrics
	Logger  *slog.Logger
	close   func() error
}

// Close releases the store.
func (r *Runtime) Close() error {
	return r.close()
}

// NewLogger builds the application logger from the log section.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.NewWithOptions(logging.Options{Level: level, Format: cfg.Format})
}

// NewRuntime wires a Bridge from cfg. Metrics are always collected; whether
// they are served is up to the transport.
func NewRuntime(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	metrics := observability.NewMetrics()

	var rec middleware.Recorder = metrics
	store, closeStore, err := OpenStore(cfg.Store, rec)
	if err != nil {
		return nil, err
	}

	doc := dom.Empty()
	if cfg.Document != "" {
		doc, err = loadDocument(cfg.Document)
		if err != nil {
			_ = closeStore()
			return nil, err
		}
	}

	var sink ports.DiagnosticSink = diagnostics.SlogSink{Logger: logger.With("source", "ui"), Level: slog.LevelInfo}
	if len(cfg.Log.Redact) > 0 {
		sink, err = diagnostics.NewRedactingSink(sink, cfg.Log.Redact)
		if err != nil {
			_ = closeStore()
			return nil, err
		}
	}

	channels, err := cfg.ChannelList()
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	bridge, err := hostbridge.New(
		hostbridge.WithStore(store),
		hostbridge.WithDocument(doc),
		hostbridge.WithDownloader(download.NewSpool(cfg.Export.SpoolDir, cfg.Export.OutputDir)),
		hostbridge.WithDiagnosticSink(sink),
		hostbridge.WithChannels(channels...),
		hostbridge.WithFrameInterval(cfg.FrameInterval),
		hostbridge.WithLifecycleHooks(metrics.Hooks()),
		hostbridge.WithLifecycleHooks(observability.LoggingHooks(logger)),
		hostbridge.WithLogger(logger),
	)
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	return &Runtime{
		Bridge:  bridge,
		Metrics: metrics,
		Logger:  logger,
		close:   closeStore,
	}, nil
}

func loadDocument(path string) (*dom.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	doc, err := dom.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", path, err)
	}
	return doc, nil
}
