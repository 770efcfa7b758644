package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/pkg/logger"
)

type options struct {
	configPath string
	dbPath     string
	logLevel   string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "mudra",
		Short:         "Gesture combo game",
		Long:          "Mudra recognizes hand gesture combos from a camera or the HTTP API and scores them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file (overrides MUDRA_CONFIG)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Path to the SQLite database (overrides db_path)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newPlayCmd(opts))
	root.AddCommand(newCombosCmd(opts))
	root.AddCommand(newHistoryCmd(opts))
	return root
}

// load reads configuration and applies flag overrides and the log level.
func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Context(), o.configPath)
	if err != nil {
		return err
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Init(); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	o.cfg = cfg
	return nil
}
