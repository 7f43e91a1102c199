package models

import (
	"time"

	"github.com/google/uuid"
)

// TeamRating is a team's opponent-adjusted rating for one run
type TeamRating struct {
	Team          Team    `json:"team"`
	DefenseRating float64 `json:"defense_rating"`
	OffenseRating float64 `json:"offense_rating"`
	Games         int     `json:"games"` // games that counted towards the rating
}

// OverallRating is the sum of defense and offense ratings
func (r TeamRating) OverallRating() float64 {
	return r.DefenseRating + r.OffenseRating
}

// TableRow is a ranked row of the presentation table
type TableRow struct {
	Rank          int     `json:"rank"`
	Team          string  `json:"team"`
	TeamID        TeamID  `json:"team_id"`
	OverallRating float64 `json:"overall_rating"`
	DefenseRating float64 `json:"defense_rating"`
	OffenseRating float64 `json:"offense_rating"`
	Games         int     `json:"games"`
}

// RatingSnapshot is the published outcome of one rating run
type RatingSnapshot struct {
	RunID           uuid.UUID
	Query           SeasonQuery
	TeamsDiscovered int
	TeamsFetched    int
	Ratings         []TeamRating
	ComputedAt      time.Time
}
