package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/angeloszaimis/source-dashboard/config"
	"github.com/angeloszaimis/source-dashboard/internal/httpserver"
	"github.com/angeloszaimis/source-dashboard/internal/metrics"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Resolve the runtime config and serve the dashboard",
		Example: `  # Serve on :8080 with config from a local mock origin
  source-dashboard serve --runtime-config-url http://localhost:8090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadSettings()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return serve(ctx, cfg, log)
		},
	}

	cmd.Flags().String("address", "", "listen address (host:port)")
	viper.BindPFlag(config.KeyServerAddress, cmd.Flags().Lookup("address"))

	return cmd
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	collector := metrics.NewCollector(cfg.Metrics.BufferSize, log)
	collector.Start(ctx)

	app, err := bootstrap(ctx, cfg, log, collector)
	if err != nil {
		log.Error("Failed to build dashboard", slog.Any("err", err))
		return err
	}
	defer app.close()

	srv, err := httpserver.New(cfg.Server.Address, app.routes, log)
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		return err
	}

	if err := srv.Run(ctx); err != nil {
		log.Error("Error serving dashboard", slog.Any("err", err))
		return err
	}

	return nil
}
