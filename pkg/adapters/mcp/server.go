package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/hostbridge"
	"github.com/aretw0/hostbridge/internal/logging"
	"github.com/aretw0/hostbridge/pkg/domain"
	"github.com/aretw0/hostbridge/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
)

// BootURI is the resource exposing the boot snapshot.
const BootURI = "hostbridge://boot"

// Bridge is the part of the host the MCP server drives. Call must return
// after the message has been dispatched so the response can be captured.
type Bridge interface {
	Call(ctx context.Context, msg domain.Message, reply ports.Outbox) error
	Boot(ctx context.Context) domain.Boot
	Bound(ch domain.Channel) bool
}

// Server exposes every bound channel as an MCP tool.
type Server struct {
	bridge    Bridge
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(bridge Bridge, opts ...Option) *Server {
	s := &Server{
		bridge:    bridge,
		mcpServer: server.NewMCPServer("hostbridge-mcp", strings.TrimSpace(hostbridge.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves on addr using SSE until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// toolSpec describes how a channel is offered as a tool.
type toolSpec struct {
	channel     domain.Channel
	description string
	options     []mcp.ToolOption
	decode      func(args map[string]any) (domain.Message, error)
}

type domArgs struct {
	DomID string `mapstructure:"domId"`
}

type downloadArgs struct {
	DomID    string `mapstructure:"domId"`
	FileName string `mapstructure:"fileName"`
}

type keyArgs struct {
	Key string `mapstructure:"key"`
}

type saveArgs struct {
	Key     string `mapstructure:"key"`
	Payload any    `mapstructure:"payload"`
}

type logArgs struct {
	Payload any `mapstructure:"payload"`
}

func decodeArgs(args map[string]any, target any) error {
	if err := mapstructure.Decode(args, target); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	return nil
}

func marshalPayload(v any) (json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	return raw, nil
}

func toolSpecs() []toolSpec {
	domID := mcp.WithString("domId", mcp.Required(), mcp.Description("ID of the element in the host document"))
	key := mcp.WithString("key", mcp.Required(), mcp.Description("Preset key"))

	return []toolSpec{
		{
			channel:     domain.ChannelOpenDialog,
			description: "Open the dialog element with the given ID on the next frame.",
			options:     []mcp.ToolOption{domID},
			decode: func(args map[string]any) (domain.Message, error) {
				var a domArgs
				err := decodeArgs(args, &a)
				return domain.OpenDialog{DomID: a.DomID}, err
			},
		},
		{
			channel:     domain.ChannelCloseDialog,
			description: "Close the dialog element with the given ID on the next frame.",
			options:     []mcp.ToolOption{domID},
			decode: func(args map[string]any) (domain.Message, error) {
				var a domArgs
				err := decodeArgs(args, &a)
				return domain.CloseDialog{DomID: a.DomID}, err
			},
		},
		{
			channel:     domain.ChannelDownloadSvg,
			description: "Export the markup of an element as an SVG file.",
			options: []mcp.ToolOption{
				domID,
				mcp.WithString("fileName", mcp.Required(), mcp.Description("File name without the .svg extension")),
			},
			decode: func(args map[string]any) (domain.Message, error) {
				var a downloadArgs
				err := decodeArgs(args, &a)
				return domain.DownloadSvg{DomID: a.DomID, FileName: a.FileName}, err
			},
		},
		{
			channel:     domain.ChannelLog,
			description: "Forward a diagnostic payload to the host log.",
			options:     []mcp.ToolOption{mcp.WithObject("payload", mcp.Description("Arbitrary diagnostic data"))},
			decode: func(args map[string]any) (domain.Message, error) {
				var a logArgs
				if err := decodeArgs(args, &a); err != nil {
					return nil, err
				}
				raw, err := marshalPayload(a.Payload)
				return domain.Log{Payload: raw}, err
			},
		},
		{
			channel:     domain.ChannelSavePreset,
			description: "Store a preset payload under a key.",
			options: []mcp.ToolOption{
				key,
				mcp.WithObject("payload", mcp.Required(), mcp.Description("Preset contents")),
			},
			decode: func(args map[string]any) (domain.Message, error) {
				var a saveArgs
				if err := decodeArgs(args, &a); err != nil {
					return nil, err
				}
				raw, err := marshalPayload(a.Payload)
				return domain.SavePreset{Key: a.Key, Payload: raw}, err
			},
		},
		{
			channel:     domain.ChannelListPresets,
			description: "List the stored preset keys.",
			decode: func(map[string]any) (domain.Message, error) {
				return domain.ListPresets{}, nil
			},
		},
		{
			channel:     domain.ChannelLoadPreset,
			description: "Load the preset stored under a key.",
			options:     []mcp.ToolOption{key},
			decode: func(args map[string]any) (domain.Message, error) {
				var a keyArgs
				err := decodeArgs(args, &a)
				return domain.LoadPreset{Key: a.Key}, err
			},
		},
		{
			channel:     domain.ChannelDeletePreset,
			description: "Delete the preset stored under a key.",
			options:     []mcp.ToolOption{key},
			decode: func(args map[string]any) (domain.Message, error) {
				var a keyArgs
				err := decodeArgs(args, &a)
				return domain.DeletePreset{Key: a.Key}, err
			},
		},
	}
}

func (s *Server) registerTools() {
	for _, spec := range toolSpecs() {
		if !s.bridge.Bound(spec.channel) {
			continue
		}
		opts := append([]mcp.ToolOption{mcp.WithDescription(spec.description)}, spec.options...)
		s.mcpServer.AddTool(mcp.NewTool(string(spec.channel), opts...), s.toolHandler(spec))
	}
}

// capture keeps the single response a dispatch may produce.
type capture struct {
	mu   sync.Mutex
	resp *domain.Response
}

func (c *capture) Send(ctx context.Context, resp domain.Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resp = &resp
	return nil
}

func (c *capture) response() *domain.Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resp
}

func (s *Server) toolHandler(spec toolSpec) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		msg, err := spec.decode(request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		reply := &capture{}
		if err := s.bridge.Call(ctx, msg, reply); err != nil {
			s.logger.Error("MCP tool failed", "tool", spec.channel, "error", err)
			return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", spec.channel, err)), nil
		}

		resp := reply.response()
		if resp == nil {
			return mcp.NewToolResultText("ok"), nil
		}
		frame, err := json.Marshal(resp)
		if err != nil {
			return nil, fmt.Errorf("failed to encode response: %w", err)
		}
		result := mcp.NewToolResultText(string(frame))
		if outcome, ok := resp.Result.(domain.Outcome); ok && !outcome.IsOk() {
			result.IsError = true
		}
		return result, nil
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(BootURI, "Boot snapshot",
		mcp.WithResourceDescription("Storage capability and stored preset keys"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.bridge.Boot(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to encode boot snapshot: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      BootURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
