package ports

import (
	"context"
	"encoding/json"

	"github.com/aretw0/hostbridge/pkg/domain"
)

// Element is a UI surface addressed by an opaque id.
type Element interface {
	// ShowModal presents the element as a modal surface.
	ShowModal() error
	// Close dismisses the element.
	Close() error
	// OuterHTML serializes the element, including itself, to markup.
	OuterHTML() (string, error)
}

// ElementRegistry looks up elements by id.
type ElementRegistry interface {
	// Lookup returns the element with the given id, or false if none exists.
	Lookup(id string) (Element, bool)
}

// FrameScheduler runs callbacks before the next repaint.
// Callbacks must never run synchronously inside RequestFrame.
type FrameScheduler interface {
	RequestFrame(fn func())
}

// Blob is a transient downloadable object.
type Blob struct {
	Data []byte
	Type string
}

// Downloader creates client-side downloadable objects and saves them.
type Downloader interface {
	// CreateObjectURL registers blob and returns a handle for it.
	CreateObjectURL(ctx context.Context, blob Blob) (string, error)
	// Save triggers a save-as of the object behind url using fileName.
	Save(ctx context.Context, url string, fileName string) error
	// RevokeObjectURL releases the handle. It is safe to call more than once.
	RevokeObjectURL(url string)
}

// DiagnosticSink accepts arbitrary structured payloads.
type DiagnosticSink interface {
	Log(ctx context.Context, payload json.RawMessage) error
}

// Outbox delivers inbound messages (host -> UI) to one UI instance.
type Outbox interface {
	Send(ctx context.Context, resp domain.Response) error
}

// OutboxFunc adapts a function to Outbox.
type OutboxFunc func(ctx context.Context, resp domain.Response) error

// Send calls f.
func (f OutboxFunc) Send(ctx context.Context, resp domain.Response) error {
	return f(ctx, resp)
}
