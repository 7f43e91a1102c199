package repository

import (
	"context"
	"fmt"
	"time"

	"sosratings/internal/metrics"
	"sosratings/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// RatingRepository stores computed rating snapshots
type RatingRepository struct {
	db *Database
}

// Name identifies the repository as a snapshot publisher
func (r *RatingRepository) Name() string {
	return "postgres"
}

// Publish stores the snapshot
func (r *RatingRepository) Publish(ctx context.Context, snapshot *models.RatingSnapshot) error {
	start := time.Now()
	err := r.SaveSnapshot(ctx, snapshot)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordPublish(r.Name(), status, time.Since(start).Seconds())

	return err
}

// SaveSnapshot stores a run and all of its team ratings in one transaction
func (r *RatingRepository) SaveSnapshot(ctx context.Context, snapshot *models.RatingSnapshot) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	runID := snapshot.RunID.String()
	q := snapshot.Query

	_, err = tx.Exec(ctx, `
		INSERT INTO rating_runs (
			run_id, sport, league, season, group_id,
			teams_discovered, teams_fetched, teams_rated, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		runID, q.Sport, q.League, q.Season, q.Group,
		snapshot.TeamsDiscovered, snapshot.TeamsFetched, len(snapshot.Ratings), snapshot.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert rating run: %w", err)
	}

	copied, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"team_ratings"},
		[]string{
			"run_id", "team_id", "location", "display_name", "abbreviation",
			"defense_rating", "offense_rating", "overall_rating", "games",
		},
		pgx.CopyFromSlice(len(snapshot.Ratings), func(i int) ([]any, error) {
			rating := snapshot.Ratings[i]
			return []any{
				runID,
				string(rating.Team.ID),
				rating.Team.Location,
				rating.Team.DisplayName,
				rating.Team.Abbreviation,
				rating.DefenseRating,
				rating.OffenseRating,
				rating.OverallRating(),
				rating.Games,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to copy team ratings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rating snapshot: %w", err)
	}

	log.Debug().
		Str("run_id", runID).
		Str("query", q.Key()).
		Int64("teams", copied).
		Msg("Rating snapshot stored")

	return nil
}

// LatestSnapshot returns the most recent snapshot stored for the query,
// with ratings ordered by overall rating. It returns nil when none exists.
func (r *RatingRepository) LatestSnapshot(ctx context.Context, q models.SeasonQuery) (*models.RatingSnapshot, error) {
	snapshot := &models.RatingSnapshot{Query: q}

	var runID string
	err := r.db.Pool.QueryRow(ctx, `
		SELECT run_id::text, teams_discovered, teams_fetched, computed_at
		FROM rating_runs
		WHERE sport = $1 AND league = $2 AND season = $3 AND group_id = $4
		ORDER BY computed_at DESC
		LIMIT 1
	`, q.Sport, q.League, q.Season, q.Group).Scan(
		&runID, &snapshot.TeamsDiscovered, &snapshot.TeamsFetched, &snapshot.ComputedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil // no run stored for this query yet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest rating run: %w", err)
	}

	snapshot.RunID, err = uuid.Parse(runID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run id %q: %w", runID, err)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT team_id, location, display_name, abbreviation,
		       defense_rating, offense_rating, games
		FROM team_ratings
		WHERE run_id = $1
		ORDER BY overall_rating DESC, team_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query team ratings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rating models.TeamRating
		var teamID string
		err := rows.Scan(
			&teamID, &rating.Team.Location, &rating.Team.DisplayName, &rating.Team.Abbreviation,
			&rating.DefenseRating, &rating.OffenseRating, &rating.Games,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team rating: %w", err)
		}
		rating.Team.ID = models.TeamID(teamID)
		snapshot.Ratings = append(snapshot.Ratings, rating)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team ratings: %w", err)
	}

	return snapshot, nil
}
