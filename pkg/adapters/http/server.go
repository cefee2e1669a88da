package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/hostbridge"
	"github.com/aretw0/hostbridge/internal/logging"
	"github.com/aretw0/hostbridge/pkg/domain"
	"github.com/aretw0/hostbridge/pkg/ports"
	"github.com/aretw0/hostbridge/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Bridge is the part of the host the HTTP transport drives.
type Bridge interface {
	Submit(ctx context.Context, msg domain.Message, reply ports.Outbox) error
	Boot(ctx context.Context) domain.Boot
	Bound(ch domain.Channel) bool
}

// DocumentReplacer swaps the headless document.
type DocumentReplacer interface {
	Replace(r io.Reader) error
}

// Server serves the channel protocol over HTTP: envelopes are posted per
// session and responses stream back over Server-Sent Events.
type Server struct {
	Bridge   Bridge
	Streams  *StreamManager
	Document DocumentReplacer
	Metrics  http.Handler
	Logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithDocument enables PUT /document.
func WithDocument(doc DocumentReplacer) Option {
	return func(s *Server) {
		s.Document = doc
	}
}

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithLogger configures the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates the HTTP handler for bridge.
func NewHandler(bridge Bridge, opts ...Option) http.Handler {
	s := &Server{
		Bridge: bridge,
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.Logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/boot", s.GetBoot)
	r.Post("/sessions/{session}/messages", s.PostMessage)
	r.Get("/sessions/{session}/events", s.SubscribeEvents)
	if s.Document != nil {
		r.Put("/document", s.PutDocument)
	}
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	_ = writeJSON(w, status, map[string]string{"error": msg})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, map[string]string{
		"app":     "hostbridge-http",
		"version": hostbridge.Version,
	})
}

// GetBoot handles GET /boot.
func (s *Server) GetBoot(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, s.Bridge.Boot(r.Context())); err != nil {
		s.Logger.Error("boot response encode failed", "error", err)
	}
}

// PostMessage handles POST /sessions/{session}/messages.
// The envelope is queued and 202 returned; any response arrives on the
// session's event stream.
func (s *Server) PostMessage(w http.ResponseWriter, r *http.Request) {
	session := chi.URLParam(r, "session")

	body, err := io.ReadAll(io.LimitReader(r.Body, int64(runner.MaxFrameSize())+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if err := runner.ValidateFrame(body); err != nil {
		s.Logger.Warn("message rejected", "session", session, "error", err, "size", len(body))
		status := http.StatusBadRequest
		if errors.Is(err, runner.ErrFrameTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, err.Error())
		return
	}

	var env domain.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		writeError(w, http.StatusBadRequest, "invalid envelope")
		return
	}
	msg, err := domain.Decode(env)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, domain.ErrUnknownChannel) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}
	if !s.Bridge.Bound(msg.Channel()) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("channel not bound: %s", msg.Channel()))
		return
	}

	if err := s.Bridge.Submit(r.Context(), msg, s.outbox(session)); err != nil {
		s.Logger.Error("submit failed", "session", session, "channel", msg.Channel(), "error", err)
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	_ = writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// outbox publishes responses to the SSE listeners of session.
func (s *Server) outbox(session string) ports.Outbox {
	return ports.OutboxFunc(func(ctx context.Context, resp domain.Response) error {
		frame, err := json.Marshal(resp)
		if err != nil {
			return err
		}
		if s.Streams.Broadcast(session, frame) == 0 {
			return fmt.Errorf("no listener for session %q", session)
		}
		return nil
	})
}

// PutDocument handles PUT /document.
func (s *Server) PutDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.Document.Replace(r.Body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubscribeEvents handles GET /sessions/{session}/events (SSE).
// The first data frame is the boot envelope.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	session := chi.URLParam(r, "session")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(session)
	defer cancel()
	s.Logger.Info("SSE: client subscribed", "session", session)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	if boot, err := json.Marshal(domain.BootResponse(s.Bridge.Boot(r.Context()))); err == nil {
		fmt.Fprintf(w, "data: %s\n\n", boot)
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE: client disconnected", "session", session)
			return
		case frame, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", frame)
			flusher.Flush()
		}
	}
}
