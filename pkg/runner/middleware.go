package runner

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/aretw0/hostbridge/pkg/domain"
	"github.com/aretw0/hostbridge/pkg/ports"
)

// Middleware wraps a Dispatcher.
type Middleware func(Dispatcher) Dispatcher

// Chain composes middleware; the first one is the outermost.
func Chain(mw ...Middleware) Middleware {
	return func(next Dispatcher) Dispatcher {
		for i := len(mw) - 1; i >= 0; i-- {
			next = mw[i](next)
		}
		return next
	}
}

// RecoverMiddleware turns a handler panic into an error so the loop survives.
func RecoverMiddleware(logger *slog.Logger) Middleware {
	return func(next Dispatcher) Dispatcher {
		return DispatcherFunc(func(ctx context.Context, msg domain.Message, reply ports.Outbox) (err error) {
			defer func() {
				if p := recover(); p != nil {
					logger.Error("handler panic", "channel", msg.Channel(), "panic", p, "stack", string(debug.Stack()))
					err = fmt.Errorf("handler panic on %s: %v", msg.Channel(), p)
				}
			}()
			return next.Dispatch(ctx, msg, reply)
		})
	}
}

// LoggingMiddleware logs every dispatch at debug level.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next Dispatcher) Dispatcher {
		return DispatcherFunc(func(ctx context.Context, msg domain.Message, reply ports.Outbox) error {
			start := time.Now()
			err := next.Dispatch(ctx, msg, reply)
			logger.Debug("dispatched", "channel", msg.Channel(), "duration", time.Since(start), "error", err)
			return err
		})
	}
}
