package models

import (
	"errors"
	"fmt"
)

// SeasonQuery selects the league season to rate
type SeasonQuery struct {
	Sport  string
	League string
	Season int
	Group  int // 0 selects every team of the league
}

// HasGroup reports whether discovery is restricted to a group
func (q SeasonQuery) HasGroup() bool {
	return q.Group > 0
}

// Validate checks that the query can address the ESPN endpoints
func (q SeasonQuery) Validate() error {
	if q.Sport == "" {
		return errors.New("sport is required")
	}
	if q.League == "" {
		return errors.New("league is required")
	}
	if q.Season <= 0 || q.Season > 65535 {
		return fmt.Errorf("season %d is out of range", q.Season)
	}
	if q.Group < 0 || q.Group > 65535 {
		return fmt.Errorf("group %d is out of range", q.Group)
	}
	return nil
}

// Key returns a stable identifier for the query, used for cache keys and logs
func (q SeasonQuery) Key() string {
	return fmt.Sprintf("%s:%s:%d:%d", q.Sport, q.League, q.Season, q.Group)
}
