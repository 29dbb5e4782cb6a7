package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tixeats/walletsettle/internal/infrastructure/postgres"
)

func (c *cli) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return postgres.RunMigrations(c.cfg.DatabaseURL, c.cfg.MigrationsPath, c.logger)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return postgres.RunMigrationsDown(c.cfg.DatabaseURL, c.cfg.MigrationsPath, c.logger)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				version, dirty, err := postgres.MigrationVersion(c.cfg.DatabaseURL, c.cfg.MigrationsPath)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "version: %d\ndirty: %v\n", version, dirty)
				return nil
			},
		},
	)

	return cmd
}
