package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"checkin/internal/platform/config"
	"checkin/internal/platform/database"
	"checkin/internal/platform/logger"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema for the configured driver",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			log := logger.New(cfg.Logging)

			db, err := database.Open(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := database.Migrate(ctx, db)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.InfoContext(ctx, "migrations applied",
				"driver", cfg.Database.Driver,
				"applied", applied,
			)
			return nil
		},
	}
}
