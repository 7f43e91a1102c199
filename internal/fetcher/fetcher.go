// Package fetcher retrieves team schedules with a bounded number of
// requests in flight. Failed fetches are dropped from the result.
package fetcher

import (
	"context"

	"sosratings/internal/metrics"
	"sosratings/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ScheduleSource fetches a single team's season schedule
type ScheduleSource interface {
	FetchTeamSchedule(ctx context.Context, q models.SeasonQuery, teamID models.TeamID) (*models.TeamSchedule, error)
}

// FetchSchedules fetches the schedule of every team id, keeping at most
// limit requests in flight. It never fails: a team whose fetch fails is
// absent from the result. The order of the result is unspecified.
func FetchSchedules(ctx context.Context, src ScheduleSource, q models.SeasonQuery, teamIDs []models.TeamID, limit int) []models.TeamSchedule {
	if limit < 1 {
		limit = 1
	}

	results := make(chan models.TeamSchedule)

	go func() {
		var g errgroup.Group
		g.SetLimit(limit)

		for _, teamID := range teamIDs {
			g.Go(func() error {
				metrics.SchedulesInFlight.Inc()
				defer metrics.SchedulesInFlight.Dec()

				schedule, err := src.FetchTeamSchedule(ctx, q, teamID)
				if err != nil {
					metrics.RecordScheduleFetch(false)
					log.Debug().
						Err(err).
						Str("team_id", string(teamID)).
						Msg("Dropping team after failed schedule fetch")
					return nil
				}

				metrics.RecordScheduleFetch(true)
				results <- *schedule
				return nil
			})
		}

		_ = g.Wait()
		close(results)
	}()

	schedules := make([]models.TeamSchedule, 0, len(teamIDs))
	for schedule := range results {
		schedules = append(schedules, schedule)
	}

	return schedules
}
