package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/hostbridge/pkg/domain"
)

// LoggingHooks returns router hooks that log each dispatch and response.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "dispatch", "channel", e.Channel, "duration", e.Duration, "error", e.Err)
				return
			}
			logger.DebugContext(ctx, "dispatch", "channel", e.Channel, "duration", e.Duration)
		},
		OnResponse: func(ctx context.Context, e *domain.ResponseEvent) {
			if !e.OK {
				logger.InfoContext(ctx, "response", "channel", e.Channel, "result_error", e.Error)
				return
			}
			logger.DebugContext(ctx, "response", "channel", e.Channel)
		},
	}
}
