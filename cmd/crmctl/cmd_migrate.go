package main

import (
	"fmt"

	"storefront-crm/internal/db"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateSteps int

// migrateCmd manages the database schema
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.MigrateUp(cfg.DatabaseURL); err != nil {
			return err
		}
		return reportVersion(cmd)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.MigrateDown(cfg.DatabaseURL, migrateSteps); err != nil {
			return err
		}
		return reportVersion(cmd)
	},
}

func reportVersion(cmd *cobra.Command) error {
	version, dirty, err := db.MigrationVersion(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	log.Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (dirty=%t)\n", version, dirty)
	return nil
}

func init() {
	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "Number of migrations to roll back")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
}
