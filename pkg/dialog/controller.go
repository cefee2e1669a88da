// Package dialog opens and closes modal surfaces on the next frame.
package dialog

import (
	"context"
	"log/slog"

	"github.com/aretw0/hostbridge/internal/logging"
	"github.com/aretw0/hostbridge/pkg/ports"
)

// Controller defers dialog changes to the next frame so the UI core can render
// the dialog contents before it is presented.
type Controller struct {
	elements ports.ElementRegistry
	frames   ports.FrameScheduler
	logger   *slog.Logger
}

// Option configures the Controller.
type Option func(*Controller)

// WithLogger configures a logger for the Controller.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// New creates a Controller.
func New(elements ports.ElementRegistry, frames ports.FrameScheduler, opts ...Option) *Controller {
	c := &Controller{
		elements: elements,
		frames:   frames,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open schedules modal presentation of domID.
// The element is looked up when the frame runs; if it is absent nothing happens.
func (c *Controller) Open(ctx context.Context, domID string) {
	c.frames.RequestFrame(func() {
		el, ok := c.elements.Lookup(domID)
		if !ok {
			c.logger.Debug("dialog not found", "op", "open", "dom_id", domID)
			return
		}
		if err := el.ShowModal(); err != nil {
			c.logger.Warn("failed to open dialog", "dom_id", domID, "error", err)
		}
	})
}

// Close schedules dismissal of domID.
func (c *Controller) Close(ctx context.Context, domID string) {
	c.frames.RequestFrame(func() {
		el, ok := c.elements.Lookup(domID)
		if !ok {
			c.logger.Debug("dialog not found", "op", "close", "dom_id", domID)
			return
		}
		if err := el.Close(); err != nil {
			c.logger.Warn("failed to close dialog", "dom_id", domID, "error", err)
		}
	})
}
