package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sosratings/internal/client"
	"sosratings/internal/config"
	"sosratings/internal/metrics"
	"sosratings/internal/models"
	"sosratings/internal/pipeline"
	"sosratings/internal/publisher"
	"sosratings/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	// Setup logger
	setupLogger(cfg)

	log.Info().Msg("Starting strength-of-schedule ratings worker")

	query := cfg.Query()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Str("query", query.Key()).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Initialize ESPN client
	espn := client.NewClient(
		cfg.ESPNCoreBaseURL,
		cfg.ESPNSiteBaseURL,
		cfg.ESPNTimeout,
		client.WithPageLimit(cfg.ESPNPageLimit),
		client.WithUserAgent(cfg.ESPNUserAgent),
	)
	log.Info().Msg("ESPN client initialized")

	// Connect publishers
	publishers, err := publisher.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open publishers")
	}
	defer publishers.Close()

	// Start metrics HTTP server
	var server *http.Server
	if cfg.EnableMetrics {
		server = newMetricsServer(cfg.MetricsPort, publishers)
		go func() {
			log.Info().Int("port", cfg.MetricsPort).Msg("Starting metrics server")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}

	// Update system uptime metric
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Create and start scheduler
	sched := scheduler.NewScheduler(
		cfg.RatingsCron,
		rateFunc(espn, query, cfg.MaxConcurrency),
		publishers.Publishers,
		scheduler.WithRunOnStart(cfg.RunOnStart),
	)

	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	// Keep running until context is cancelled
	<-ctx.Done()

	// Graceful shutdown
	sched.Stop()

	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Metrics server shutdown failed")
		}
	}

	log.Info().Msg("Worker shutdown complete")
}

// rateFunc runs the rating pipeline for the configured query
func rateFunc(c pipeline.Client, q models.SeasonQuery, concurrency int) scheduler.RunFunc {
	return func(ctx context.Context) (*models.RatingSnapshot, error) {
		result, err := pipeline.Run(ctx, c, q, concurrency)
		if err != nil {
			return nil, err
		}
		return result.Snapshot(), nil
	}
}

// setupLogger configures the zerolog logger
func setupLogger(cfg *config.Config) {
	// Pretty console logging in development
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// Set log level
	level := zerolog.InfoLevel
	if cfg.LogLevel != "" {
		parsedLevel, err := zerolog.ParseLevel(cfg.LogLevel)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

type healthChecker interface {
	Health(ctx context.Context) error
}

// newMetricsServer serves Prometheus metrics and a health check
func newMetricsServer(port int, health healthChecker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler(health))

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func healthHandler(health healthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if err := health.Health(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy", "error": err.Error()})
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}
}
