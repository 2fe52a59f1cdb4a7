package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"gopherauth/internal/bootstrap"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			app, err := bootstrap.OpenDatabase(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("open database failed: %w", err)
			}
			defer app.Close()

			if err := app.Migrate(cmd.Context()); err != nil {
				return err
			}
			slog.Info("migration complete", "driver", cfg.Database.Driver)
			return nil
		},
	}
}
