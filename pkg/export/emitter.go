// Package export turns a rendered element into a downloadable SVG file.
package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/hostbridge/internal/logging"
	"github.com/aretw0/hostbridge/pkg/ports"
)

// SvgMimeType is the content type of exported blobs.
const SvgMimeType = "image/svg+xml;charset=utf-8"

// Emitter exports element markup through a ports.Downloader.
type Emitter struct {
	elements   ports.ElementRegistry
	downloader ports.Downloader
	logger     *slog.Logger
}

// Option configures the Emitter.
type Option func(*Emitter)

// WithLogger configures a logger for the Emitter.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Emitter) {
		e.logger = logger
	}
}

// New creates an Emitter.
func New(elements ports.ElementRegistry, downloader ports.Downloader, opts ...Option) *Emitter {
	e := &Emitter{
		elements:   elements,
		downloader: downloader,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExportSvg saves the outer markup of domID as "<fileName>.svg".
// A missing element is a silent no-op. Failures are logged, never reported to the UI.
func (e *Emitter) ExportSvg(ctx context.Context, domID, fileName string) {
	if err := e.export(ctx, domID, fileName); err != nil {
		e.logger.Warn("svg export failed", "dom_id", domID, "file_name", fileName, "error", err)
	}
}

func (e *Emitter) export(ctx context.Context, domID, fileName string) error {
	el, ok := e.elements.Lookup(domID)
	if !ok {
		e.logger.Debug("export element not found", "dom_id", domID)
		return nil
	}

	markup, err := el.OuterHTML()
	if err != nil {
		return fmt.Errorf("failed to serialize element: %w", err)
	}

	url, err := e.downloader.CreateObjectURL(ctx, ports.Blob{
		Data: []byte(markup),
		Type: SvgMimeType,
	})
	if err != nil {
		return fmt.Errorf("failed to create object url: %w", err)
	}
	defer e.downloader.RevokeObjectURL(url)

	if err := e.downloader.Save(ctx, url, fileName+".svg"); err != nil {
		return fmt.Errorf("failed to save download: %w", err)
	}

	e.logger.Debug("svg exported", "dom_id", domID, "file_name", fileName+".svg", "bytes", len(markup))
	return nil
}
