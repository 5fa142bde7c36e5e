package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/geteduroam/discogen/pkg/catapi"
	"github.com/geteduroam/discogen/pkg/config"
	"github.com/geteduroam/discogen/pkg/logging"
)

var version = "dev"

// globals are the persistent flags shared by every sub-command.
type globals struct {
	configPath string
	logLevel   string
}

func main() {
	var g globals

	root := &cobra.Command{
		Use:           "discogen",
		Short:         "Generate eduroam discovery documents from the CAT catalog",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "discogen.yaml", "path to config file")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "override log.level from the config")

	root.AddCommand(
		newGenerateCmd(&g),
		newCacheCmd(&g),
		newHistoryCmd(&g),
		newProvidersCmd(&g),
		newDeviceCmd(&g),
		newSeqCmd(&g),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and returns a context carrying the logger.
// A missing config file at the default path falls back to the defaults.
func (g *globals) setup(cmd *cobra.Command) (context.Context, *config.Config, error) {
	cfg, err := g.load(cmd)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Log.Level
	if g.logLevel != "" {
		level = g.logLevel
	}
	logger, err := logging.New(level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	ctx := logging.WithLogger(cmd.Context(), logger)
	logger.Debug("configuration loaded", zap.String("path", g.configPath))
	return ctx, cfg, nil
}

func (g *globals) load(cmd *cobra.Command) (*config.Config, error) {
	if _, err := os.Stat(g.configPath); os.IsNotExist(err) && !cmd.Flags().Changed("config") {
		cfg := config.Default()
		return cfg, cfg.Validate()
	}
	return config.Load(g.configPath)
}

// openClient opens the configured cache store and a catalog client on it.
// Closing the store is up to the caller.
func openClient(ctx context.Context, cfg *config.Config) (*catapi.Client, error) {
	store, err := catapi.NewStore(ctx, cfg.StoreConfig())
	if err != nil {
		return nil, err
	}
	client, err := catapi.New(cfg.Catalog.BaseURL,
		catapi.WithStore(store),
		catapi.WithTTL(cfg.Catalog.CacheTTL),
		catapi.WithTimeout(cfg.Catalog.Timeout),
	)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return client, nil
}
