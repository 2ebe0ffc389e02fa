package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	pgRepo "nexuspulse/internal/infra/adapter/persistence/postgres"
	"nexuspulse/internal/infra/db"
	"nexuspulse/internal/infra/fetcher"
	"nexuspulse/internal/infra/scraper"
	"nexuspulse/internal/infra/sentiment"
	"nexuspulse/internal/observability/logging"
	"nexuspulse/internal/resilience/circuitbreaker"
	"nexuspulse/internal/usecase/ingest"
	"nexuspulse/pkg/config"
)

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startMetricsServer(ctx, logger, database)

	svc, err := setupIngestService(logger, database)
	if err != nil {
		logger.Error("failed to set up ingest service", slog.Any("error", err))
		os.Exit(1)
	}

	runCron(ctx, logger, svc)
}

// initLogger initializes the process-wide structured logger.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database, runs migrations and optionally seeds
// the starter entities. The worker owns the schema: the API tolerates a
// file-backed fallback, the worker does not.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	if config.GetEnvBool("SEED_ENTITIES", false) {
		if err := db.SeedEntities(database); err != nil {
			logger.Error("failed to seed entities", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("entity seed applied")
	}
	return database
}

// setupIngestService wires the feed chain, repositories and sentiment
// classifier into the ingest service.
func setupIngestService(logger *slog.Logger, database *sql.DB) (*ingest.Service, error) {
	fetchCfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	strategies, err := fetchCfg.Strategies()
	if err != nil {
		return nil, err
	}
	chain := fetcher.NewChainFetcher(fetchCfg.NewHTTPClient(), strategies)

	entities := pgRepo.NewEntityRepo(circuitbreaker.NewDBCircuitBreakerWithConfig(database, circuitbreaker.ConfigLookupConfig()))
	signals := pgRepo.NewSignalRepo(circuitbreaker.NewDBCircuitBreaker(database))

	classifier := createClassifier(logger)
	return ingest.NewService(entities, signals, scraper.NewRSSScraper(chain), classifier), nil
}

// createClassifier selects the sentiment provider from the
// SENTIMENT_PROVIDER environment variable.
func createClassifier(logger *slog.Logger) sentiment.Classifier {
	provider := config.GetEnvString("SENTIMENT_PROVIDER", "keyword")

	switch provider {
	case "claude":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			logger.Error("ANTHROPIC_API_KEY is required when SENTIMENT_PROVIDER=claude")
			os.Exit(1)
		}
		logger.Info("using Claude API for sentiment classification")
		return sentiment.NewClaude(apiKey)
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			logger.Error("OPENAI_API_KEY is required when SENTIMENT_PROVIDER=openai")
			os.Exit(1)
		}
		logger.Info("using OpenAI API for sentiment classification")
		return sentiment.NewOpenAI(apiKey)
	case "keyword":
		logger.Info("using keyword heuristics for sentiment classification")
		return sentiment.NewKeyword()
	case "none":
		logger.Info("sentiment classification disabled")
		return sentiment.NewNoOp()
	default:
		logger.Error("invalid SENTIMENT_PROVIDER",
			slog.String("provider", provider),
			slog.String("expected", "claude, openai, keyword or none"))
		os.Exit(1)
		return nil
	}
}

// runCron schedules periodic ingest cycles and blocks until a shutdown
// signal arrives. One cycle runs immediately at startup so a fresh
// deployment does not wait for the first tick.
func runCron(ctx context.Context, logger *slog.Logger, svc *ingest.Service) {
	schedule := config.GetEnvString("INGEST_SCHEDULE", "*/15 * * * *")
	cycleTimeout := config.GetEnvDuration("INGEST_TIMEOUT", 5*time.Minute)

	run := func() {
		runCtx, cancel := context.WithTimeout(ctx, cycleTimeout)
		defer cancel()
		if _, err := svc.RunAll(runCtx); err != nil {
			logger.Error("ingest cycle failed", slog.Any("error", err))
		}
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, run); err != nil {
		logger.Error("invalid INGEST_SCHEDULE",
			slog.String("schedule", schedule),
			slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("ingest worker starting",
		slog.String("schedule", schedule),
		slog.Duration("cycle_timeout", cycleTimeout))

	run()
	c.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	cronCtx := c.Stop()
	<-cronCtx.Done()
	logger.Info("ingest worker stopped")
}
