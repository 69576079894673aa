package cmd

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/aevon-lab/relaystore/internal/migrations"
)

func newMigrateCmd(loadConfig configLoader) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long: `Apply every embedded schema migration that the database has not seen yet.
With --check nothing is applied and pending migrations are reported as an error.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := sql.Open("postgres", cfg.Database.DSN)
			if err != nil {
				return fmt.Errorf("failed to open postgres database: %w", err)
			}
			defer db.Close()

			if err := db.PingContext(cmd.Context()); err != nil {
				return fmt.Errorf("failed to ping postgres database: %w", err)
			}

			if err := migrations.Run(db, !check); err != nil {
				return err
			}

			slog.Info("Schema is up to date")
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "report pending migrations without applying them")
	return cmd
}
