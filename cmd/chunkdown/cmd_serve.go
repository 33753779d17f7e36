package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/chunkdown/internal/api"
	"github.com/dgallion1/chunkdown/internal/compare"
	"github.com/dgallion1/chunkdown/internal/version"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP/JSON API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			if cmd.Flags().Changed("addr") {
				cfg.Server.ListenAddr = addr
			}

			stats := compare.NewStats(cfg.Compare.StatsWindow)
			runner := compare.NewRunner(cfg.Compare.Concurrency, stats, logger.With("component", "compare"))
			srv := api.NewServer(runner, stats, logger.With("component", "api"), *cfg)

			if cfg.Server.APIKey == "" {
				logger.Warn("HTTP API: auth is disabled; set CHUNKDOWN_SERVER_API_KEY or server.api_key to require a bearer token")
			}

			httpServer := &http.Server{
				Addr:              cfg.Server.ListenAddr,
				Handler:           srv,
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       cfg.Server.ReadTimeout,
				WriteTimeout:      cfg.Server.WriteTimeout,
				IdleTimeout:       60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("starting chunkdown", "addr", cfg.Server.ListenAddr, "version", version.Version, "server", cfg.Server.String())
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- fmt.Errorf("serve: HTTP server: %w", err)
				}
				close(errCh)
			}()

			select {
			case <-cmd.Context().Done():
				logger.Info("shutting down...")
			case err := <-errCh:
				return err
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("serve: graceful shutdown: %w", err)
			}
			return <-errCh
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
