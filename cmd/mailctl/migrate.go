package main

import (
	"errors"
	"fmt"

	"github.com/aaplamahesh/outreach/internal/database"
	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the contacts database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Run all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migrate.Migrate) error {
			if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Println("migrations completed successfully")
			return nil
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migrate.Migrate) error {
			if err := m.Steps(-1); err != nil {
				return fmt.Errorf("rollback failed: %w", err)
			}
			fmt.Println("rollback completed successfully")
			return nil
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migrate.Migrate) error {
			version, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Println("No migrations have been applied")
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to get version: %w", err)
			}
			fmt.Printf("Current version: %d\n", version)
			fmt.Printf("Dirty: %v\n", dirty)
			return nil
		})
	},
}

// withMigrator connects to Postgres directly so the schema can be managed
// even when database.enabled is off for the server.
func withMigrator(fn func(*migrate.Migrate) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	m, err := database.NewMigrator(db)
	if err != nil {
		return err
	}
	return fn(m)
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}
