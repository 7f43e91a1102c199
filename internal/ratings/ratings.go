// Package ratings computes opponent-adjusted offense and defense ratings
// from a complete set of team schedules.
//
// A team's defense rating is the average, over its counted games, of how
// many points the opponent normally scores minus what it scored against the
// team. The offense rating is the average of what the team scored minus what
// the opponent normally allows. An opponent's normal scoring is its average
// over its own games against known teams, leaving out every game against the
// team being rated.
package ratings

import (
	"runtime"

	"sosratings/internal/metrics"
	"sosratings/internal/models"

	"golang.org/x/sync/errgroup"
)

// Index is a read-only lookup of the schedules of one run. The set of
// indexed team ids is the known team set: games against any other team
// are not rated.
type Index struct {
	schedules map[models.TeamID]*models.TeamSchedule
}

// NewIndex indexes schedules by team id. The first schedule of a team wins.
func NewIndex(schedules []models.TeamSchedule) *Index {
	ix := &Index{schedules: make(map[models.TeamID]*models.TeamSchedule, len(schedules))}
	for i := range schedules {
		id := schedules[i].Team.ID
		if _, ok := ix.schedules[id]; !ok {
			ix.schedules[id] = &schedules[i]
		}
	}
	return ix
}

// Known reports whether a schedule was fetched for the team
func (ix *Index) Known(id models.TeamID) bool {
	_, ok := ix.schedules[id]
	return ok
}

// Len returns the number of known teams
func (ix *Index) Len() int {
	return len(ix.schedules)
}

// Baseline is a team's average scoring over a set of games
type Baseline struct {
	Scored  float64
	Allowed float64
	Games   int
}

// Baseline averages team's scored and allowed points over its games against
// known teams other than exclude. It reports false when no game qualifies.
func (ix *Index) Baseline(team, exclude models.TeamID) (Baseline, bool) {
	schedule, ok := ix.schedules[team]
	if !ok {
		return Baseline{}, false
	}

	var b Baseline
	for _, event := range schedule.Events {
		result, ok := event.Result(team)
		if !ok || result.Opponent == exclude || !ix.Known(result.Opponent) {
			continue
		}
		b.Scored += result.Scored
		b.Allowed += result.Allowed
		b.Games++
	}

	if b.Games == 0 {
		return Baseline{}, false
	}

	b.Scored /= float64(b.Games)
	b.Allowed /= float64(b.Games)
	return b, true
}

// Rate computes the rating of the indexed team. It reports false when none
// of the team's games could be counted.
//
// A game counts when it has two numeric scores, the opponent is known and
// the opponent has at least one other game to build a baseline from.
func (ix *Index) Rate(team models.TeamID) (models.TeamRating, bool) {
	schedule, ok := ix.schedules[team]
	if !ok || len(schedule.Events) == 0 {
		return models.TeamRating{}, false
	}

	var defense, offense float64
	games := 0

	for _, event := range schedule.Events {
		result, ok := event.Result(team)
		if !ok {
			metrics.RecordGameSkipped(metrics.SkipNoResult)
			continue
		}
		if !ix.Known(result.Opponent) {
			metrics.RecordGameSkipped(metrics.SkipUnknownOpponent)
			continue
		}

		baseline, ok := ix.Baseline(result.Opponent, team)
		if !ok {
			metrics.RecordGameSkipped(metrics.SkipEmptyBaseline)
			continue
		}

		defense += baseline.Scored - result.Allowed
		offense += result.Scored - baseline.Allowed
		games++
	}

	if games == 0 {
		return models.TeamRating{}, false
	}

	return models.TeamRating{
		Team:          schedule.Team,
		DefenseRating: defense / float64(games),
		OffenseRating: offense / float64(games),
		Games:         games,
	}, true
}

// Compute rates every team of schedules. Teams without a countable game
// are omitted. Ratings keep the order of schedules; a team appearing more
// than once is rated once.
func Compute(schedules []models.TeamSchedule) []models.TeamRating {
	ix := NewIndex(schedules)

	rated := make([]models.TeamRating, len(schedules))
	ok := make([]bool, len(schedules))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	seen := make(map[models.TeamID]struct{}, len(schedules))
	for i := range schedules {
		id := schedules[i].Team.ID
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		g.Go(func() error {
			rated[i], ok[i] = ix.Rate(id)
			return nil
		})
	}
	_ = g.Wait()

	ratings := make([]models.TeamRating, 0, len(schedules))
	for i := range rated {
		if ok[i] {
			ratings = append(ratings, rated[i])
		}
	}

	return ratings
}
