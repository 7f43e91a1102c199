package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeasonQuery_Validate(t *testing.T) {
	valid := SeasonQuery{Sport: "football", League: "college-football", Season: 2024, Group: 80}
	assert.NoError(t, valid.Validate())
	assert.True(t, valid.HasGroup())
	assert.Equal(t, "football:college-football:2024:80", valid.Key())

	tests := []struct {
		name  string
		query SeasonQuery
	}{
		{name: "missing sport", query: SeasonQuery{League: "nfl", Season: 2024}},
		{name: "missing league", query: SeasonQuery{Sport: "football", Season: 2024}},
		{name: "missing season", query: SeasonQuery{Sport: "football", League: "nfl"}},
		{name: "season too large", query: SeasonQuery{Sport: "football", League: "nfl", Season: 70000}},
		{name: "negative group", query: SeasonQuery{Sport: "football", League: "nfl", Season: 2024, Group: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.query.Validate())
		})
	}
}

func TestTeamRating_OverallRating(t *testing.T) {
	r := TeamRating{DefenseRating: -2.5, OffenseRating: 7.25}
	assert.Equal(t, 4.75, r.OverallRating())
}
