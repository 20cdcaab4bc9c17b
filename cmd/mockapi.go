package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/angeloszaimis/source-dashboard/internal/httpserver"
	"github.com/angeloszaimis/source-dashboard/internal/mockapi"
	"github.com/angeloszaimis/source-dashboard/pkg/logger"
)

func newMockAPICmd() *cobra.Command {
	var (
		opts    mockapi.Options
		service string
		address string
		level   string
	)

	cmd := &cobra.Command{
		Use:   "mockapi",
		Short: "Run a stub record service",
		Example: `  # Both services plus the runtime config on one port
  source-dashboard mockapi --service all --config-dir ./public/config --address :8090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New(level, false, opts.Environment).With(slog.String("service", service))

			opts.Service = mockapi.Service(service)
			opts.Logger = log

			router, err := mockapi.NewRouter(opts)
			if err != nil {
				return err
			}

			srv, err := httpserver.New(address, router, log)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&service, "service", string(mockapi.All), "service to impersonate: primary, secondary or all")
	cmd.Flags().StringVar(&address, "address", ":8090", "listen address (host:port)")
	cmd.Flags().StringVar(&opts.Environment, "environment", "dev", "environment reported by the secondary service")
	cmd.Flags().StringVar(&opts.SampleSetting, "sample-setting", "", "sampleSetting reported by /data2/env")
	cmd.Flags().StringVar(&opts.ConfigDir, "config-dir", "", "directory served under /config/")
	cmd.Flags().StringVar(&level, "log-level", "info", "log level")

	return cmd
}
