// Package websocket serves the channel protocol over WebSocket connections.
// Each connection is one UI instance: text frames carry envelopes in both
// directions and the first frame written is the boot snapshot.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/hostbridge/internal/logging"
	"github.com/aretw0/hostbridge/pkg/domain"
	"github.com/aretw0/hostbridge/pkg/ports"
	"github.com/aretw0/hostbridge/pkg/runner"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second

	// Pings are sent with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// Bridge is the part of the host a connection drives.
type Bridge interface {
	Submit(ctx context.Context, msg domain.Message, reply ports.Outbox) error
	Boot(ctx context.Context) domain.Boot
}

// Handler upgrades requests and pumps envelopes between the socket and the
// bridge.
type Handler struct {
	bridge   Bridge
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// Option configures the Handler.
type Option func(*Handler)

// WithLogger configures the connection logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithCheckOrigin replaces the origin check. The default accepts any origin.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(h *Handler) {
		h.upgrader.CheckOrigin = fn
	}
}

// NewHandler creates a WebSocket handler for bridge.
func NewHandler(bridge Bridge, opts ...Option) *Handler {
	h := &Handler{
		bridge: bridge,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// conn serializes writes; gorilla allows one concurrent writer.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(messageType, data)
}

// Send implements ports.Outbox.
func (c *conn) Send(ctx context.Context, resp domain.Response) error {
	frame, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return c.write(websocket.TextMessage, frame)
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}
	c := &conn{ws: ws}
	remote := r.RemoteAddr
	h.logger.Info("websocket connected", "remote_addr", remote)

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer func() {
		cancel()
		_ = ws.Close()
		h.logger.Info("websocket closed", "remote_addr", remote)
	}()

	if err := c.Send(ctx, domain.BootResponse(h.bridge.Boot(ctx))); err != nil {
		h.logger.Warn("boot frame failed", "remote_addr", remote, "error", err)
		return
	}

	go h.ping(ctx, c)
	h.readLoop(ctx, c, remote)
}

func (h *Handler) ping(ctx context.Context, c *conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) readLoop(ctx context.Context, c *conn, remote string) {
	limit := runner.MaxFrameSize()
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, r, err := c.ws.NextReader()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", "remote_addr", remote, "error", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			h.logger.Debug("ignoring non-text frame", "remote_addr", remote, "type", messageType)
			continue
		}
		data, size, err := readLimited(r, limit)
		if err != nil {
			h.logger.Warn("websocket read failed", "remote_addr", remote, "error", err)
			return
		}
		if size > len(data) {
			h.logger.Warn("frame rejected", "remote_addr", remote, "error", runner.ErrFrameTooLarge, "size", size)
			continue
		}
		if err := runner.ValidateFrame(data); err != nil {
			h.logger.Warn("frame rejected", "remote_addr", remote, "error", err, "size", size)
			continue
		}

		var env domain.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			h.logger.Warn("invalid envelope", "remote_addr", remote, "error", err)
			continue
		}
		msg, err := domain.Decode(env)
		if err != nil {
			h.logger.Warn("message dropped", "remote_addr", remote, "channel", env.Channel, "error", err)
			continue
		}

		if err := h.bridge.Submit(ctx, msg, c); err != nil {
			if errors.Is(err, runner.ErrStopped) {
				_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "host stopped"))
				return
			}
			h.logger.Error("submit failed", "remote_addr", remote, "channel", msg.Channel(), "error", err)
		}
	}
}

// readLimited keeps at most limit bytes of a message and discards the rest.
// An oversized message comes back empty with its full size.
func readLimited(r io.Reader, limit int) ([]byte, int, error) {
	data, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, 0, err
	}
	if len(data) <= limit {
		return data, len(data), nil
	}
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return nil, 0, err
	}
	return nil, len(data) + int(n), nil
}
