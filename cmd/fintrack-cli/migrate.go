package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/backend"
	"fintrack/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long: `Apply the embedded schema migrations to the SQL backend selected by
DATA_BACKEND. Memory and bolt backends have no schema.`,
		Args: cobra.NoArgs,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	switch backend.BackendType(cfg.DataBackend) {
	case backend.SQLiteBackend:
		// Opening the repository creates the data directory and migrates.
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
		defer repo.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "sqlite schema up to date (%s)\n", cfg.SQLiteDBPath)
	case backend.PostgresBackend:
		if err := storage.RunPostgresMigrations(cfg.PostgresURL); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "postgres schema up to date")
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "backend %q has no schema to migrate\n", cfg.DataBackend)
	}
	return nil
}
