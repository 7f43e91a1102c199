// Package pipeline runs one rating pass: team discovery, schedule
// retrieval and rating computation.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"sosratings/internal/discovery"
	"sosratings/internal/fetcher"
	"sosratings/internal/metrics"
	"sosratings/internal/models"
	"sosratings/internal/ratings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Client is the upstream data provider
type Client interface {
	discovery.PageSource
	fetcher.ScheduleSource
}

// Result is the outcome of a run
type Result struct {
	RunID     uuid.UUID
	Query     models.SeasonQuery
	TeamIDs   []models.TeamID
	Schedules []models.TeamSchedule
	Ratings   []models.TeamRating
	StartedAt time.Time
	Duration  time.Duration
}

// Snapshot returns the publishable part of the result
func (r *Result) Snapshot() *models.RatingSnapshot {
	return &models.RatingSnapshot{
		RunID:           r.RunID,
		Query:           r.Query,
		TeamsDiscovered: len(r.TeamIDs),
		TeamsFetched:    len(r.Schedules),
		Ratings:         r.Ratings,
		ComputedAt:      r.StartedAt.Add(r.Duration),
	}
}

// Run discovers the teams of q, fetches their schedules with at most
// concurrency requests in flight and rates every fetched team.
//
// A discovery failure aborts the run. Failed schedule fetches only shrink
// the set of rated teams. A run whose context ends before the ratings are
// computed returns the context error.
func Run(ctx context.Context, c Client, q models.SeasonQuery, concurrency int) (*Result, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	result := &Result{
		RunID:     uuid.New(),
		Query:     q,
		StartedAt: time.Now(),
	}

	logger := log.With().
		Str("run_id", result.RunID.String()).
		Str("query", q.Key()).
		Logger()

	fail := func(err error) (*Result, error) {
		metrics.RecordRun("failure", time.Since(result.StartedAt).Seconds(), 0)
		logger.Error().Err(err).Msg("Rating run failed")
		return nil, err
	}

	logger.Info().Msg("Discovering teams")
	ids, err := discovery.DiscoverTeamIDs(ctx, c, q)
	if err != nil {
		return fail(err)
	}
	result.TeamIDs = ids

	logger.Info().
		Int("teams", len(ids)).
		Int("concurrency", concurrency).
		Msg("Fetching schedules")
	result.Schedules = fetcher.FetchSchedules(ctx, c, q, ids, concurrency)

	if err := ctx.Err(); err != nil {
		return fail(fmt.Errorf("run cancelled: %w", err))
	}

	logger.Info().
		Int("fetched", len(result.Schedules)).
		Int("dropped", len(ids)-len(result.Schedules)).
		Msg("Computing ratings")
	result.Ratings = ratings.Compute(result.Schedules)

	result.Duration = time.Since(result.StartedAt)
	metrics.RecordRun("success", result.Duration.Seconds(), len(result.Ratings))

	logger.Info().
		Int("rated", len(result.Ratings)).
		Dur("duration", result.Duration).
		Msg("Rating run completed")

	return result, nil
}
