package models

import (
	"bytes"
	"math"
	"strconv"
)

// TeamSchedule is a team's season schedule from the site API
type TeamSchedule struct {
	Team   Team    `json:"team"`
	Events []Event `json:"events"`
}

// Event is one scheduled game. An event may carry several competitions when
// a game was postponed or replayed; the last one reflects the official state.
type Event struct {
	ID           string        `json:"id"`
	Date         ESPNTime      `json:"date"`
	Name         string        `json:"name"`
	Competitions []Competition `json:"competitions"`
}

// Competition is a single meeting between two competitors
type Competition struct {
	ID          string       `json:"id"`
	Competitors []Competitor `json:"competitors"`
}

// Competitor is one side of a competition
type Competitor struct {
	ID       TeamID           `json:"id"`
	HomeAway string           `json:"homeAway"`
	Score    *CompetitorScore `json:"score,omitempty"`
}

// CompetitorScore holds the score of a played game
type CompetitorScore struct {
	Value        ScoreValue `json:"value"`
	DisplayValue string     `json:"displayValue"`
}

// ScoreValue is a score that tolerates non-numeric upstream values.
// Numeric is false when the value was null, a non-numeric string or
// not a finite number.
type ScoreValue struct {
	Float   float64
	Numeric bool
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (v *ScoreValue) UnmarshalJSON(b []byte) error {
	*v = ScoreValue{}

	s := string(bytes.Trim(bytes.TrimSpace(b), `"`))
	if s == "" || s == "null" {
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}

	v.Float = f
	v.Numeric = true
	return nil
}

// Points returns the competitor's score if it is present and numeric
func (c Competitor) Points() (float64, bool) {
	if c.Score == nil || !c.Score.Value.Numeric {
		return 0, false
	}
	return c.Score.Value.Float, true
}

// LastCompetition returns the authoritative competition of the event
func (e Event) LastCompetition() (Competition, bool) {
	if len(e.Competitions) == 0 {
		return Competition{}, false
	}
	return e.Competitions[len(e.Competitions)-1], true
}

// Sides splits the competition into the competitor matching self and its
// opponent. Competitors are matched by id; their position in the list
// carries no meaning.
func (c Competition) Sides(self TeamID) (me, opponent Competitor, ok bool) {
	if len(c.Competitors) != 2 {
		return Competitor{}, Competitor{}, false
	}

	switch self {
	case c.Competitors[0].ID:
		return c.Competitors[0], c.Competitors[1], true
	case c.Competitors[1].ID:
		return c.Competitors[1], c.Competitors[0], true
	default:
		return Competitor{}, Competitor{}, false
	}
}

// GameResult is a completed game seen from one team's side
type GameResult struct {
	Opponent TeamID
	Scored   float64
	Allowed  float64
}

// Result resolves the event from self's side. It reports false when the
// event has no competition, self is not one of exactly two competitors or
// either score is missing or non-numeric.
func (e Event) Result(self TeamID) (GameResult, bool) {
	comp, ok := e.LastCompetition()
	if !ok {
		return GameResult{}, false
	}

	me, opp, ok := comp.Sides(self)
	if !ok {
		return GameResult{}, false
	}

	scored, ok := me.Points()
	if !ok {
		return GameResult{}, false
	}
	allowed, ok := opp.Points()
	if !ok {
		return GameResult{}, false
	}

	return GameResult{Opponent: opp.ID, Scored: scored, Allowed: allowed}, true
}
