package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gopherauth/internal/config"
	"gopherauth/internal/logging"
)

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "gopherauth",
		Short:         "User registration and login server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				return os.Setenv("CONFIG_FILE", configFile)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to the TOML config file (default configs/config.toml)")

	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

// loadConfig reads and validates the configuration and installs the logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	logging.Setup(cfg.Log.Format, cfg.Log.Level, cfg.App.Name, cfg.App.Env)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
