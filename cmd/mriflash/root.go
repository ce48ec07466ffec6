package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vytor/mriflash/internal/app"
	"github.com/vytor/mriflash/internal/config"
	"github.com/vytor/mriflash/internal/logger"
)

type rootOptions struct {
	dbPath   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "mriflash",
		Short:         "Practice telling T1 from T2 weighted brain MRI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg := config.Load()
			level := cfg.LogLevel
			if opts.logLevel != "" {
				level = opts.logLevel
			}
			logger.SetDefault(logger.New(
				logger.WithOutput(cmd.ErrOrStderr()),
				logger.WithLevel(logger.ParseLevel(level)),
				logger.WithColors(cfg.LogColors),
			))
		},
	}
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "sqlite database path (default from DB_PATH)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (default from LOG_LEVEL)")

	cmd.AddCommand(newPlayCmd(opts), newCatalogCmd(), newStatsCmd(opts))
	return cmd
}

// openApp loads configuration, applies flag overrides and starts the app.
// Maintenance is left to the server.
func openApp(ctx context.Context, opts *rootOptions) (*app.App, error) {
	cfg := config.Load()
	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.MaintenanceInterval = 0

	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := a.Start(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}
