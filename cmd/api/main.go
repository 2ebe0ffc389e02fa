package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	pgRepo "nexuspulse/internal/infra/adapter/persistence/postgres"
	"nexuspulse/internal/infra/adapter/persistence/yamlcfg"
	"nexuspulse/internal/infra/db"
	"nexuspulse/internal/infra/fetcher"
	"nexuspulse/internal/infra/scraper"
	"nexuspulse/internal/observability/logging"
	"nexuspulse/internal/observability/tracing"
	"nexuspulse/internal/repository"
	"nexuspulse/internal/resilience/circuitbreaker"
	"nexuspulse/internal/usecase/aggregate"
	"nexuspulse/pkg/config"

	hhttp "nexuspulse/internal/handler/http"
	"nexuspulse/internal/handler/http/dynamics"
	"nexuspulse/internal/handler/http/requestid"
)

func main() {
	logger := initLogger()
	version := getVersion()

	shutdownTracer, err := tracing.InitTracer("nexuspulse-api", version)
	if err != nil {
		logger.Error("failed to initialize tracer", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			logger.Error("failed to shut down tracer", slog.Any("error", err))
		}
	}()

	entities, signals, database := initRepositories(logger)
	if database != nil {
		defer func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", slog.Any("error", err))
			}
		}()
	}

	svc, err := setupAggregator(entities, signals)
	if err != nil {
		logger.Error("failed to set up aggregation service", slog.Any("error", err))
		os.Exit(1)
	}

	handler := setupHandler(logger, svc, database, version)
	runServer(logger, handler)
}

// initLogger initializes the process-wide structured logger.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	return config.GetEnvString("VERSION", "dev")
}

// initRepositories selects the entity configuration backend. With
// DATABASE_URL set the API serves Postgres-backed entities and stored
// signals behind a circuit breaker; otherwise it falls back to the
// read-only YAML entity file and skips stored signals entirely.
func initRepositories(logger *slog.Logger) (repository.EntityRepository, repository.SignalRepository, *sql.DB) {
	if os.Getenv("DATABASE_URL") == "" {
		path := config.GetEnvString("ENTITIES_CONFIG", "entities.yaml")
		repo, err := yamlcfg.NewRepo(path)
		if err != nil {
			logger.Error("failed to load entity configuration file",
				slog.String("path", path),
				slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("using file-backed entity configuration", slog.String("path", path))
		return repo, nil, nil
	}

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

	configCB := circuitbreaker.NewDBCircuitBreakerWithConfig(database, circuitbreaker.ConfigLookupConfig())
	signalCB := circuitbreaker.NewDBCircuitBreaker(database)
	return pgRepo.NewEntityRepo(configCB), pgRepo.NewSignalRepo(signalCB), database
}

// setupAggregator wires the feed fetch chain into the aggregation service.
func setupAggregator(entities repository.EntityRepository, signals repository.SignalRepository) (*aggregate.Service, error) {
	fetchCfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	strategies, err := fetchCfg.Strategies()
	if err != nil {
		return nil, err
	}
	chain := fetcher.NewChainFetcher(fetchCfg.NewHTTPClient(), strategies)
	return aggregate.NewService(entities, signals, scraper.NewRSSScraper(chain)), nil
}

// setupHandler registers routes and applies the middleware chain.
func setupHandler(logger *slog.Logger, svc *aggregate.Service, database *sql.DB, version string) http.Handler {
	mux := http.NewServeMux()
	dynamics.Register(mux, svc, logger)
	mux.Handle("GET /healthz", &hhttp.HealthHandler{DB: database, Version: version})
	mux.Handle("GET /metrics", promhttp.Handler())

	rateLimit := config.GetEnvInt("RATE_LIMIT_PER_MINUTE", 60)
	requestTimeout := config.GetEnvDuration("REQUEST_TIMEOUT", 30*time.Second)
	limiter := hhttp.NewRateLimiter(rateLimit, time.Minute)

	// Innermost first: the timeout wraps the handlers, rate limiting
	// runs before any aggregation work, and recovery is outermost so a
	// panic anywhere in the chain still yields a JSON 500.
	var handler http.Handler = mux
	handler = hhttp.Timeout(requestTimeout)(handler)
	handler = limiter.Limit(handler)
	handler = hhttp.LimitRequestBody(1 << 20)(handler)
	handler = hhttp.Metrics(handler)
	handler = hhttp.Logging(logger)(handler)
	handler = tracing.Middleware(handler)
	handler = requestid.Middleware(handler)
	handler = hhttp.Recover(logger)(handler)
	return handler
}

// runServer starts the HTTP server and blocks until shutdown completes.
func runServer(logger *slog.Logger, handler http.Handler) {
	addr := ":" + config.GetEnvString("PORT", "8080")
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", slog.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped")
	}
}
