// Background re-scoring worker entry point for partscout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

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
	"github.com/partscout/partscout/internal/infrastructure/signals"
	"github.com/partscout/partscout/pkg/types/listing"
)

const defaultConfigPath = "configs/config.yaml"

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

	logger.Info("starting partscout re-scoring worker",
		logging.String("version", version),
		logging.Int("concurrency", cfg.Worker.Concurrency),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to PostgreSQL", logging.Err(err))
	}
	defer pool.Close()
	repo := postgres.NewScoreRepository(pool, logger)

	redisClient, err := redis.Connect(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("failed to connect to Redis", logging.Err(err))
	}
	defer redisClient.Close()

	fetcher := metadata.NewFetcher(cfg.Fetcher, logger,
		metadata.WithCache(redis.NewMetadataCache(redisClient, cfg.Redis, logger)),
	)

	producer := kafka.NewProducer(cfg.Kafka, logger)
	defer producer.Close()

	svc := scoring.NewService(
		brand.NewResolver(),
		valuation.NewCalculator(),
		intelligence.NewScorer(),
		signals.NewSimulator(),
		logger,
		scoring.WithFetcher(fetcher),
		scoring.WithGeo(geo.NewGeocoder(cfg.Geo, logger), geo.HaversineMiles),
		scoring.WithRepository(repo),
		scoring.WithPublisher(producer),
	)

	handler := rescoreHandler(svc)

	// Each consumer joins the same group, so partitions split across them.
	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Worker.Concurrency; i++ {
		consumer := kafka.NewConsumer(cfg.Kafka, handler, logger)
		group.Go(func() error {
			defer consumer.Close()
			return consumer.Run(groupCtx)
		})
	}

	if err := group.Wait(); err != nil {
		logger.Fatal("worker stopped with error", logging.Err(err))
	}
	logger.Info("worker stopped")
}

// rescoreHandler adapts a re-score request into a full analyze pass.
func rescoreHandler(svc *scoring.Service) kafka.RescoreHandler {
	return func(ctx context.Context, req kafka.RescoreRequest) error {
		category, _ := listing.ParseCategory(req.Category)
		condition, _ := listing.ParseCondition(req.Condition)

		out, err := svc.Analyze(ctx, scoring.AnalyzeRequest{
			URL:       req.URL,
			Category:  category,
			Condition: condition,
			BuyerZip:  req.BuyerZip,
		})
		if err != nil {
			return err
		}

		logging.Default().Info("listing re-scored",
			logging.String("url", req.URL),
			logging.Float64("score10", out.Result.Intelligence.Score10),
			logging.String("price_signal", string(out.Result.Valuation.PriceSignal)),
		)
		return nil
	}
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
