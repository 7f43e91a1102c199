//go:build integration

package repository

import (
	"testing"
	"time"

	"sosratings/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(q models.SeasonQuery, computedAt time.Time) *models.RatingSnapshot {
	return &models.RatingSnapshot{
		RunID:           uuid.New(),
		Query:           q,
		TeamsDiscovered: 4,
		TeamsFetched:    3,
		ComputedAt:      computedAt,
		Ratings: []models.TeamRating{
			{Team: models.Team{ID: "2", Location: "Bravo"}, DefenseRating: -5, OffenseRating: -2.5, Games: 2},
			{Team: models.Team{ID: "1", Location: "Alpha", Abbreviation: "ALP"}, DefenseRating: 5.5, OffenseRating: 8, Games: 2},
			{Team: models.Team{ID: "3", Location: "Charlie"}, DefenseRating: -0.5, OffenseRating: -5.5, Games: 2},
		},
	}
}

func TestRatingRepository_SaveAndLoad(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	// unique league keeps repeated runs of the test apart
	q := models.SeasonQuery{Sport: "football", League: "test-" + uuid.NewString(), Season: 2024}
	now := time.Now().UTC().Truncate(time.Microsecond)

	older := testSnapshot(q, now.Add(-time.Hour))
	require.NoError(t, db.Ratings.SaveSnapshot(ctx, older), "Should store older snapshot")

	latest := testSnapshot(q, now)
	require.NoError(t, db.Ratings.Publish(ctx, latest), "Should store latest snapshot")

	loaded, err := db.Ratings.LatestSnapshot(ctx, q)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, latest.RunID, loaded.RunID, "Latest run should be returned")
	assert.Equal(t, 4, loaded.TeamsDiscovered)
	assert.Equal(t, 3, loaded.TeamsFetched)
	assert.True(t, latest.ComputedAt.Equal(loaded.ComputedAt))

	require.Len(t, loaded.Ratings, 3)
	assert.Equal(t, models.TeamID("1"), loaded.Ratings[0].Team.ID, "Ratings ordered by overall rating")
	assert.Equal(t, "ALP", loaded.Ratings[0].Team.Abbreviation)
	assert.Equal(t, models.TeamID("3"), loaded.Ratings[1].Team.ID)
	assert.Equal(t, models.TeamID("2"), loaded.Ratings[2].Team.ID)
	assert.InDelta(t, 13.5, loaded.Ratings[0].OverallRating(), 1e-9)
}

func TestRatingRepository_DuplicateRunRollsBack(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	q := models.SeasonQuery{Sport: "football", League: "test-" + uuid.NewString(), Season: 2024}
	snapshot := testSnapshot(q, time.Now())

	require.NoError(t, db.Ratings.SaveSnapshot(ctx, snapshot))
	assert.Error(t, db.Ratings.SaveSnapshot(ctx, snapshot), "Same run id cannot be stored twice")

	var count int
	err := db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM team_ratings WHERE run_id = $1", snapshot.RunID.String()).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "Failed save should not add ratings")
}

func TestRatingRepository_LatestSnapshotMissing(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	q := models.SeasonQuery{Sport: "football", League: "missing-" + uuid.NewString(), Season: 1999}

	snapshot, err := db.Ratings.LatestSnapshot(ctx, q)
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}
