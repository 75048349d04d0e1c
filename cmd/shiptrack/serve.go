package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shiptrack/internal/core/logger"
	"shiptrack/internal/core/server"
	trackinghandler "shiptrack/internal/features/tracking/handler"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// shutdownTimeout bounds how long in-flight requests may finish after a signal.
const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve tracking lookups as JSON over HTTP",
		Long: `serve exposes GET /track/{carrier}/{number[,number...]} and answers with the
normalized, sorted tracking records for the given numbers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := bootstrap(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()

			serverCfg := app.cfg.Server
			if cmd.Flags().Changed("port") {
				serverCfg.Port = port
			}

			srv := server.New(serverCfg)
			trackinghandler.NewTrackingHandler(app.service).Register(srv.App)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, srv)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides server.port)")

	return cmd
}

// serve runs srv until it fails or ctx is cancelled.
func serve(ctx context.Context, srv *server.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Get().Error("Server shutdown failed", zap.Error(err))
		return err
	}

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
