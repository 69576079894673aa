package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aevon-lab/relaystore/internal/core/storage/postgres"
	"github.com/aevon-lab/relaystore/internal/ingestion"
)

func newImportCmd(loadConfig configLoader) *cobra.Command {
	var (
		path    string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Bulk load events from a JSON lines file",
		Long: `Read one JSON event per line and store each one. Lines that do not parse or
validate are skipped and counted. Use --file - to read from stdin.`,
		Example: `  relaystore import --file events.jsonl
  relaystore import --file - --workers 16 < events.jsonl`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if workers <= 0 {
				workers = cfg.Import.WorkerCount
			}

			var in io.Reader = cmd.InOrStdin()
			if path != "-" {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("failed to open import file: %w", err)
				}
				defer f.Close()
				in = f
			}

			store, err := postgres.Initialize(cmd.Context(), cfg, nil)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer store.Close()

			stats, err := ingestion.NewImporter(store, workers).Import(cmd.Context(), in)
			fmt.Fprintf(cmd.OutOrStdout(), "read=%d stored=%d duplicates=%d invalid=%d duration=%s\n",
				stats.Read, stats.Stored, stats.Duplicates, stats.Invalid, stats.Duration)
			return err
		},
	}

	cmd.Flags().StringVarP(&path, "file", "f", "", "JSON lines file to import, or - for stdin")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent writers (default import.worker_count)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
