package runner_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/hostbridge/internal/logging"
	"github.com/aretw0/hostbridge/pkg/domain"
	"github.com/aretw0/hostbridge/pkg/ports"
	"github.com/aretw0/hostbridge/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopLogger() *slog.Logger {
	return logging.NewNop()
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) runner.Middleware {
		return func(next runner.Dispatcher) runner.Dispatcher {
			return runner.DispatcherFunc(func(ctx context.Context, msg domain.Message, reply ports.Outbox) error {
				order = append(order, name)
				return next.Dispatch(ctx, msg, reply)
			})
		}
	}
	base := runner.DispatcherFunc(func(context.Context, domain.Message, ports.Outbox) error {
		order = append(order, "handler")
		return nil
	})

	d := runner.Chain(mark("outer"), mark("inner"))(base)
	require.NoError(t, d.Dispatch(context.Background(), domain.ListPresets{}, nil))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)

	// Empty chain is the identity.
	order = nil
	require.NoError(t, runner.Chain()(base).Dispatch(context.Background(), domain.ListPresets{}, nil))
	assert.Equal(t, []string{"handler"}, order)
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	base := runner.DispatcherFunc(func(context.Context, domain.Message, ports.Outbox) error { return nil })

	require.NoError(t, runner.LoggingMiddleware(logger)(base).Dispatch(context.Background(), domain.LoadPreset{Key: "k"}, nil))
	assert.Contains(t, buf.String(), "channel=loadPreset")
}

func TestValidateFrame(t *testing.T) {
	assert.NoError(t, runner.ValidateFrame([]byte(`{"channel":"log","payload":"ok"}`)))
	assert.ErrorIs(t, runner.ValidateFrame([]byte{0xff, 0xfe}), runner.ErrInvalidUTF8)

	t.Setenv(runner.EnvMaxFrameSize, "8")
	assert.Equal(t, 8, runner.MaxFrameSize())
	assert.ErrorIs(t, runner.ValidateFrame([]byte(`123456789`)), runner.ErrFrameTooLarge)

	t.Setenv(runner.EnvMaxFrameSize, "garbage")
	assert.Equal(t, runner.DefaultMaxFrameSize, runner.MaxFrameSize())
}
