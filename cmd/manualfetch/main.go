// Command manualfetch runs a single rating pass for the configured season
// and publishes it, without waiting for the worker's schedule.
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sosratings/internal/client"
	"sosratings/internal/config"
	"sosratings/internal/models"
	"sosratings/internal/pipeline"
	"sosratings/internal/publisher"
	"sosratings/internal/scheduler"

	"github.com/rs/zerolog/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}

// run performs the manual rating run and returns the process exit code
func run(ctx context.Context) int {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}
	query := cfg.Query()

	publishers, err := publisher.Open(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open publishers")
		return 1
	}
	defer publishers.Close()

	// 1. Validate service health
	log.Info().Msg("Validating service health...")
	if err := publishers.Health(ctx); err != nil {
		log.Error().Err(err).Msg("Database health check failed")
		return 1
	}

	espn := client.NewClient(
		cfg.ESPNCoreBaseURL,
		cfg.ESPNSiteBaseURL,
		cfg.ESPNTimeout,
		client.WithPageLimit(cfg.ESPNPageLimit),
		client.WithUserAgent(cfg.ESPNUserAgent),
	)

	// 2. Rate, validate and publish
	rate := func(ctx context.Context) (*models.RatingSnapshot, error) {
		result, err := pipeline.Run(ctx, espn, query, cfg.MaxConcurrency)
		if err != nil {
			return nil, err
		}

		snapshot := result.Snapshot()
		if err := validateSnapshot(snapshot); err != nil {
			return nil, fmt.Errorf("snapshot validation failed: %w", err)
		}
		return snapshot, nil
	}

	start := time.Now()
	sched := scheduler.NewScheduler("@daily", rate, publishers.Publishers)
	if err := sched.RunOnce(ctx); err != nil {
		log.Error().Err(err).Str("query", query.Key()).Msg("Manual rating run failed")
		return 1
	}

	log.Info().
		Str("query", query.Key()).
		Int("publishers", len(publishers.Publishers)).
		Dur("duration", time.Since(start)).
		Msg("Manual rating run complete")

	return 0
}

// validateSnapshot refuses snapshots that would overwrite good data with
// an unusable run
func validateSnapshot(s *models.RatingSnapshot) error {
	if s.TeamsFetched == 0 {
		return fmt.Errorf("no schedule could be fetched for %d discovered teams", s.TeamsDiscovered)
	}
	if len(s.Ratings) == 0 {
		return fmt.Errorf("no team could be rated")
	}
	for _, r := range s.Ratings {
		if math.IsNaN(r.DefenseRating) || math.IsNaN(r.OffenseRating) {
			return fmt.Errorf("team %s has an undefined rating", r.Team.ID)
		}
	}
	return nil
}
