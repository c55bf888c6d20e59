// API server entry point for partscout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"

	"github.com/partscout/partscout/internal/application/scoring"
	"github.com/partscout/partscout/internal/config"
	"github.com/partscout/partscout/internal/domain/brand"
	"github.com/partscout/partscout/internal/domain/intelligence"
	"github.com/partscout/partscout/internal/domain/valuation"
	"github.com/partscout/partscout/internal/infrastructure/database/postgres"
	"github.com/partscout/partscout/internal/infrastructure/database/redis"
	"github.com/partscout/partscout/internal/infrastructure/geo"
	"github.com/partscout/partscout/internal/infrastructure/messaging/kafka"
	"github.com/partscout/partscout/internal/infrastructure/metadata"
	"github.com/partscout/partscout/internal/infrastructure/monitoring/logging"
	"github.com/partscout/partscout/internal/infrastructure/monitoring/prometheus"
	"github.com/partscout/partscout/internal/infrastructure/signals"
	httpserver "github.com/partscout/partscout/internal/interfaces/http"
	"github.com/partscout/partscout/internal/interfaces/http/handlers"
	"github.com/partscout/partscout/internal/interfaces/http/middleware"
)

const defaultConfigPath = "configs/config.yaml"

// Build-time variables injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	logger.Info("starting partscout API server",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// PostgreSQL and schema migrations.
	pool, err := postgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to PostgreSQL", logging.Err(err))
	}
	defer pool.Close()

	if err := postgres.Migrate(cfg.Database, logger); err != nil {
		logger.Fatal("failed to run database migrations", logging.Err(err))
	}
	repo := postgres.NewScoreRepository(pool, logger)

	// Redis metadata cache.
	redisClient, err := redis.Connect(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("failed to connect to Redis", logging.Err(err))
	}
	defer redisClient.Close()
	metadataCache := redis.NewMetadataCache(redisClient, cfg.Redis, logger)

	// Kafka producer for scored-listing events.
	producer := kafka.NewProducer(cfg.Kafka, logger)
	defer producer.Close()

	metrics := prometheus.NewMetrics()

	fetcher := metadata.NewFetcher(cfg.Fetcher, logger,
		metadata.WithCache(metadataCache),
		metadata.WithMetrics(metrics),
	)
	geocoder := geo.NewGeocoder(cfg.Geo, logger)

	svc := scoring.NewService(
		brand.NewResolver(),
		valuation.NewCalculator(),
		intelligence.NewScorer(),
		signals.NewSimulator(),
		logger,
		scoring.WithFetcher(fetcher),
		scoring.WithGeo(geocoder, geo.HaversineMiles),
		scoring.WithRepository(repo),
		scoring.WithPublisher(producer),
	)

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		Config:       cfg,
		Logger:       logger,
		ScoreHandler: handlers.NewScoreHandler(svc, metrics),
		HealthHandler: handlers.NewHealthHandler(version, map[string]handlers.Pinger{
			"postgres": pool,
			"redis":    redisPinger{redisClient},
		}),
		Metrics:        metrics,
		MetricsHandler: metrics.Handler(),
		RateLimiter:    limiter,
	})

	// Hot-reload the safe subset of settings when the config file changes.
	if _, statErr := os.Stat(*configPath); statErr == nil {
		config.Watch(*configPath, func(next *config.Config) {
			if ls, ok := logger.(logging.LevelSetter); ok {
				ls.SetLevel(next.Log.Level)
			}
			limiter.SetRate(next.Server.RateLimitRPS, next.Server.RateLimitBurst)
			logger.Info("configuration reloaded",
				logging.String("log_level", next.Log.Level),
				logging.Float64("rate_limit_rps", next.Server.RateLimitRPS),
			)
		})
	}

	srv := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("HTTP server failed", logging.Err(err))
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", logging.Err(err))
	}

	logger.Info("server stopped")
}

// loadConfig reads the config file at path, falling back to environment
// variables plus defaults when the default path does not exist.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if path != defaultConfigPath {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

// redisPinger adapts the go-redis client to the health Pinger contract.
type redisPinger struct {
	client *goredis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
