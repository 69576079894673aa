// Package cmd provides the relaystore CLI commands.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	corecfg "github.com/aevon-lab/relaystore/internal/core/config"
)

// NewRootCmd creates a fresh command tree.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "relaystore",
		Short: "Postgres persistence engine for Nostr events",
		Long: `relaystore stores signed Nostr events in PostgreSQL, indexes their
single-letter tags and answers NIP-01 filter queries over HTTP.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file (RELAYSTORE_* env vars override it)")

	loadConfig := func() (*corecfg.Config, error) {
		cfg, err := corecfg.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		slog.SetDefault(cfg.Log.NewLogger())
		return cfg, nil
	}

	cmd.AddCommand(newServeCmd(loadConfig))
	cmd.AddCommand(newMigrateCmd(loadConfig))
	cmd.AddCommand(newImportCmd(loadConfig))

	return cmd
}

// Execute runs the root command. Called by main.main().
func Execute() error {
	return NewRootCmd().Execute()
}

type configLoader func() (*corecfg.Config, error)
