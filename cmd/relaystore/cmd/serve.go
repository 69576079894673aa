package cmd

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aevon-lab/relaystore/internal/core/metrics"
	"github.com/aevon-lab/relaystore/internal/core/storage/postgres"
	"github.com/aevon-lab/relaystore/internal/ingestion"
	"github.com/aevon-lab/relaystore/internal/query"
	"github.com/aevon-lab/relaystore/internal/server"
)

func newServeCmd(loadConfig configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Example: `  relaystore serve
  relaystore serve --config relaystore.yaml
  RELAYSTORE_SERVER__PORT=9000 relaystore serve`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// Signal handler cancels ctx, which triggers the shutdown sequence below.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var reg *metrics.Registry
			if cfg.Metrics.Enabled {
				reg = metrics.NewRegistry()
			}

			// 1. Initialize Storage (PostgreSQL, migrations, schema check)
			store, err := postgres.Initialize(ctx, cfg, reg)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer store.Close()

			// 2. Start pool metrics collection if enabled
			if reg != nil {
				collector := metrics.NewPoolCollector(cfg.Metrics.CollectInterval, store.Pool(), reg)
				go func() {
					if err := collector.Start(ctx); err != nil && ctx.Err() == nil {
						slog.Error("Pool collector stopped with error", "error", err)
					}
				}()
			} else {
				slog.Info("Metrics disabled by config")
			}

			// 3. Initialize Services
			ingestionSvc := ingestion.NewService(store, cfg.Server.MaxBodySizeMB)
			querySvc := query.NewService(store)

			// 4. Initialize Server
			srv := server.New(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port), store, cfg.Server.Mode, reg)
			ingestionSvc.RegisterRoutes(srv.Engine)
			querySvc.RegisterRoutes(srv.Engine)

			// HTTP server blocks until ctx is cancelled.
			if err := srv.Run(ctx); err != nil {
				return fmt.Errorf("server stopped with error: %w", err)
			}

			slog.Info("Shutdown complete")
			return nil
		},
	}
}
