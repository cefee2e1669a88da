package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/hostbridge/pkg/adapters/http"
	wsAdapter "github.com/aretw0/hostbridge/pkg/adapters/websocket"
	"github.com/aretw0/hostbridge/pkg/runner"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the channel protocol over HTTP and WebSocket",
	Long: `Starts the bridge and exposes it over HTTP:

  POST /sessions/{session}/messages   submit an envelope
  GET  /sessions/{session}/events     responses as Server-Sent Events
  GET  /ws                            bidirectional WebSocket
  GET  /boot, PUT /document, GET /health, GET /info, GET /metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, cfg, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()
		logger := rt.Logger

		sm := runner.NewSignalManager(context.Background())
		defer sm.Stop()
		ctx := sm.Context()

		httpOpts := []httpAdapter.Option{
			httpAdapter.WithDocument(rt.Bridge.Document()),
			httpAdapter.WithLogger(logger),
		}
		if cfg.Server.Metrics {
			httpOpts = append(httpOpts, httpAdapter.WithMetrics(rt.Metrics.Handler()))
		}

		mux := http.NewServeMux()
		mux.Handle("/ws", wsAdapter.NewHandler(rt.Bridge, wsAdapter.WithLogger(logger)))
		mux.Handle("/", httpAdapter.NewHandler(rt.Bridge, httpOpts...))

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}

		runErr := make(chan error, 1)
		go func() { runErr <- rt.Bridge.Run(ctx) }()

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("hostbridge server listening", "address", srv.Addr, "store", cfg.Store.Driver)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			sm.Stop()
			<-runErr
			return fmt.Errorf("server error: %w", err)

		case err := <-runErr:
			_ = srv.Close()
			return err

		case <-ctx.Done():
			logger.Info("shutdown signal received")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
				_ = srv.Close()
			}
			if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			logger.Info("hostbridge server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (overrides server.addr)")
	serveCmd.Flags().String("document", "", "HTML document the dialogs and exports operate on")
}
