package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/angeloszaimis/source-dashboard/config"
	"github.com/angeloszaimis/source-dashboard/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "source-dashboard",
		Short: "Dashboard for two record services configured at runtime",
		Long: `Resolves the runtime config from a config origin, then loads the
record lists of the primary and secondary services and serves their status
as an HTML page and a JSON view model.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cfgFile != "" {
				viper.SetConfigFile(cfgFile)
			}
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default ./config/config.yaml or ./config.yaml)")
	root.PersistentFlags().String("runtime-config-url", "", "origin serving /config/config.json")
	viper.BindPFlag(config.KeyRuntimeConfigURL, root.PersistentFlags().Lookup("runtime-config-url"))

	root.AddCommand(newServeCmd(), newMockAPICmd(), newResolveCmd())

	return root
}

// loadSettings loads the process settings and builds the logger they describe.
func loadSettings() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		return nil, nil, err
	}

	return cfg, logger.New(cfg.Logging.Level, true, cfg.Server.Environment), nil
}
