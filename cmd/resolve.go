package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/angeloszaimis/source-dashboard/config"
	"github.com/angeloszaimis/source-dashboard/internal/source"
)

type resolveOutput struct {
	PrimaryEndpoint   string                     `json:"API_BASE_URL"`
	SecondaryEndpoint string                     `json:"API2_BASE_URL"`
	EnvironmentLabel  string                     `json:"VITE_ENV"`
	Secondary         *source.ServiceEnvironment `json:"secondaryEnvironment,omitempty"`
}

func newResolveCmd() *cobra.Command {
	var probe bool

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the runtime config once and print it",
		Example: `  # Check what a deployment would load
  source-dashboard resolve --runtime-config-url https://app.example.com --probe`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadSettings()
			if err != nil {
				return err
			}
			return resolve(cmd.Context(), cmd.OutOrStdout(), cfg, log, probe)
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "also query the secondary service's /data2/env")

	return cmd
}

func resolve(ctx context.Context, out io.Writer, cfg *config.Config, log *slog.Logger, probe bool) error {
	resolver, err := newResolver(cfg, log)
	if err != nil {
		return err
	}

	resolved, err := resolver.Resolve(ctx)
	if err != nil {
		log.Error("Runtime config load failed", slog.Any("err", err))
		return err
	}

	result := resolveOutput{
		PrimaryEndpoint:   resolved.PrimaryEndpoint,
		SecondaryEndpoint: resolved.SecondaryEndpoint,
		EnvironmentLabel:  resolved.EnvironmentLabel,
	}

	if probe {
		env, err := source.ProbeEnvironment(ctx, nil, resolved.SecondaryEndpoint+"/data2/env")
		if err != nil {
			log.Warn("Environment probe failed", slog.Any("err", err))
		} else {
			result.Secondary = &env
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
