package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamRef_ID(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		wantID TeamID
		wantOK bool
	}{
		{
			name:   "core api reference",
			url:    "http://sports.core.api.espn.com/v2/sports/football/leagues/college-football/seasons/2024/teams/333?lang=en&region=us",
			wantID: "333",
			wantOK: true,
		},
		{
			name:   "empty query string",
			url:    "https://example.test/teams/57?",
			wantID: "57",
			wantOK: true,
		},
		{
			name:   "leading zeros are normalised",
			url:    "https://example.test/teams/0042?lang=en",
			wantID: "42",
			wantOK: true,
		},
		{name: "no query string", url: "https://example.test/teams/333"},
		{name: "no slash", url: "333?lang=en"},
		{name: "not an integer", url: "https://example.test/teams/abc?lang=en"},
		{name: "negative", url: "https://example.test/teams/-4?lang=en"},
		{name: "exceeds 32 bits", url: "https://example.test/teams/4294967296?lang=en"},
		{name: "empty segment", url: "https://example.test/teams/?lang=en"},
		{name: "empty", url: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := TeamRef{URL: tt.url}.ID()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestTeamPage_Decode(t *testing.T) {
	body := `{
		"count": 3,
		"pageIndex": 1,
		"pageSize": 2,
		"pageCount": 2,
		"items": [
			{"$ref": "http://sports.core.api.espn.com/v2/sports/football/leagues/nfl/seasons/2024/teams/1?lang=en"},
			{"$ref": "http://sports.core.api.espn.com/v2/sports/football/leagues/nfl/seasons/2024/teams/2?lang=en"}
		]
	}`

	var page TeamPage
	require.NoError(t, json.Unmarshal([]byte(body), &page))

	assert.Equal(t, 1, page.PageIndex)
	assert.Equal(t, 2, page.PageCount)
	assert.Len(t, page.Items, 2)
	assert.False(t, page.IsLast())

	page.PageIndex = 2
	assert.True(t, page.IsLast())
}

func TestTeamPage_IsLastWithoutPages(t *testing.T) {
	page := TeamPage{PageIndex: 1, PageCount: 0}
	assert.True(t, page.IsLast(), "an empty listing must still terminate")
}

func TestTeam_Name(t *testing.T) {
	assert.Equal(t, "Alabama", Team{Location: "Alabama", DisplayName: "Alabama Crimson Tide"}.Name())
	assert.Equal(t, "Alabama Crimson Tide", Team{DisplayName: "Alabama Crimson Tide"}.Name())
}
