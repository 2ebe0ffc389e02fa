package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nexuspulse/pkg/config"
)

// livenessResponse is the body for GET /health.
type livenessResponse struct {
	Status string `json:"status"`
}

// startMetricsServer starts the worker's Prometheus metrics and health
// HTTP server in the background. When ctx is canceled the server shuts
// down gracefully within 5 seconds.
//
// Endpoints:
//   - GET /metrics - Prometheus metrics
//   - GET /health - liveness probe, always 200
//   - GET /health/db - readiness probe, 503 while the store is unreachable
//
// The port defaults to 9090 and can be overridden with METRICS_PORT.
func startMetricsServer(ctx context.Context, logger *slog.Logger, database *sql.DB) *http.Server {
	port := config.GetEnvInt("METRICS_PORT", 9090)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(livenessResponse{Status: "healthy"})
	})
	mux.HandleFunc("/health/db", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := database.PingContext(pingCtx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(livenessResponse{Status: "unhealthy"})
			return
		}
		_ = json.NewEncoder(w).Encode(livenessResponse{Status: "healthy"})
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
		}
	}()

	return server
}
