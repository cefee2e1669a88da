package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventDispatch EventType = "dispatch"
	EventResponse EventType = "response"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// DispatchEvent describes one handled outbound message.
type DispatchEvent struct {
	EventBase
	Channel  Channel       `json:"channel"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// ResponseEvent describes one emitted response.
type ResponseEvent struct {
	EventBase
	Channel Channel `json:"channel"`
	OK      bool    `json:"ok"`
	Error   string  `json:"error,omitempty"`
}

// LifecycleHooks defines callbacks for router observability.
type LifecycleHooks struct {
	OnDispatch func(context.Context, *DispatchEvent)
	OnResponse func(context.Context, *ResponseEvent)
}

// Merge returns hooks that call h first, then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnDispatch: chainDispatch(h.OnDispatch, other.OnDispatch),
		OnResponse: chainResponse(h.OnResponse, other.OnResponse),
	}
}

func chainDispatch(a, b func(context.Context, *DispatchEvent)) func(context.Context, *DispatchEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *DispatchEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainResponse(a, b func(context.Context, *ResponseEvent)) func(context.Context, *ResponseEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *ResponseEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

// Outcome is implemented by Result so hooks can inspect responses without
// knowing the carried type.
type Outcome interface {
	IsOk() bool
	Error() string
}
