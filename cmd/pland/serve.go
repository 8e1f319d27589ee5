package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	planhttp "github.com/fyrsmithlabs/pland/internal/http"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the pland HTTP server",
		Long: `Start the HTTP API server.

Endpoints:
  GET  /health
  POST /planner/create_plan
  POST /planner/chat

The server shuts down gracefully on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	srv, err := planhttp.NewServer(a.orchestrator, a.chat, a.logger, a.cfg.Server)
	if err != nil {
		return err
	}

	a.logger.Info(ctx, "pland starting",
		zap.String("version", version),
		zap.String("host", a.cfg.Server.Host),
		zap.Int("port", a.cfg.Server.Port))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(a.cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error(shutdownCtx, "shutdown failed", zap.Error(err))
		return err
	}

	a.logger.Info(shutdownCtx, "shutdown complete")
	return nil
}
