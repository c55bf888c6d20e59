package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/partscout/partscout/internal/application/scoring"
	"github.com/partscout/partscout/internal/infrastructure/geo"
	"github.com/partscout/partscout/internal/infrastructure/metadata"
	"github.com/partscout/partscout/internal/infrastructure/monitoring/logging"
	"github.com/partscout/partscout/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/partscout/partscout/internal/interfaces/http"
	"github.com/partscout/partscout/internal/interfaces/http/handlers"
)

// NewServeCommand creates the serve command: an embedded API server with
// the full scoring pipeline but no external infrastructure.  Scores are
// not persisted and no events are published; for the production wiring
// with PostgreSQL, Redis, and Kafka, run cmd/apiserver instead.
func NewServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an embedded API server without external infrastructure",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			cfg := cliCtx.Config
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			metrics := prometheus.NewMetrics()
			svc := localService(cliCtx,
				scoring.WithFetcher(metadata.NewFetcher(cfg.Fetcher, cliCtx.Logger, metadata.WithMetrics(metrics))),
				scoring.WithGeo(geo.NewGeocoder(cfg.Geo, cliCtx.Logger), geo.HaversineMiles),
			)

			router := httpserver.NewRouter(httpserver.RouterDeps{
				Config:         cfg,
				Logger:         cliCtx.Logger,
				ScoreHandler:   handlers.NewScoreHandler(svc, metrics),
				HealthHandler:  handlers.NewHealthHandler(Version, nil),
				Metrics:        metrics,
				MetricsHandler: metrics.Handler(),
			})
			srv := httpserver.NewServer(cfg.Server, router, cliCtx.Logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Serving on :%d (no persistence; scores are not recorded)\n", cfg.Server.Port)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				cliCtx.Logger.Error("server shutdown error", logging.Err(err))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")

	return cmd
}
