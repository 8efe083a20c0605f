package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/migrations"
)

func newMigrateCmd() *cobra.Command {
	var (
		projectID  string
		instanceID string
		databaseID string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the Spanner instance and database if needed and apply DDL",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := migrations.Options{
				ProjectID:    orDefault(projectID, cfg.SpannerProject),
				InstanceID:   orDefault(instanceID, cfg.SpannerInstance),
				DatabaseID:   orDefault(databaseID, cfg.SpannerDatabase),
				Dir:          cfg.MigrationsDir,
				EmulatorHost: cfg.SpannerEmulatorHost,
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if err := migrations.Run(ctx, opts, logger); err != nil {
				return err
			}
			logger.Info("all migrations applied successfully")
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Spanner project ID (default SPANNER_PROJECT)")
	cmd.Flags().StringVar(&instanceID, "instance", "", "Spanner instance ID (default SPANNER_INSTANCE)")
	cmd.Flags().StringVar(&databaseID, "database", "", "Spanner database ID (default SPANNER_DATABASE)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "timeout for migration operations")
	return cmd
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
