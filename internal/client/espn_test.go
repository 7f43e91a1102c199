package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sosratings/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testQuery = models.SeasonQuery{Sport: "football", League: "college-football", Season: 2024}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/core", server.URL+"/site", 5*time.Second)
}

func TestClient_FetchTeamPage(t *testing.T) {
	var gotPath, gotLimit, gotPage, gotAgent string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotLimit = r.URL.Query().Get("limit")
		gotPage = r.URL.Query().Get("page")
		gotAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, `{"count":2,"pageIndex":1,"pageSize":1000,"pageCount":1,"items":[
			{"$ref":"http://sports.core.api.espn.com/v2/sports/football/leagues/college-football/seasons/2024/teams/333?lang=en"},
			{"$ref":"http://sports.core.api.espn.com/v2/sports/football/leagues/college-football/seasons/2024/teams/2?lang=en"}
		]}`)
	})

	page, err := c.FetchTeamPage(context.Background(), testQuery, 1)
	require.NoError(t, err)

	assert.Equal(t, "/core/sports/football/leagues/college-football/seasons/2024/teams", gotPath)
	assert.Equal(t, "1000", gotLimit)
	assert.Equal(t, "1", gotPage)
	assert.Equal(t, DefaultUserAgent, gotAgent)
	assert.Equal(t, 1, page.PageIndex)
	assert.Equal(t, 1, page.PageCount)
	assert.Len(t, page.Items, 2)
}

func TestClient_FetchTeamPageWithGroup(t *testing.T) {
	var gotPath, gotLimit string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotLimit = r.URL.Query().Get("limit")
		fmt.Fprint(w, `{"pageIndex":1,"pageCount":1,"items":[]}`)
	})
	WithPageLimit(50)(c)

	q := testQuery
	q.Group = 80
	_, err := c.FetchTeamPage(context.Background(), q, 1)
	require.NoError(t, err)

	assert.Equal(t, "/core/sports/football/leagues/college-football/seasons/2024/types/2/groups/80/teams", gotPath)
	assert.Equal(t, "50", gotLimit)
}

func TestClient_FetchTeamSchedule(t *testing.T) {
	var gotPath, gotSeason string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSeason = r.URL.Query().Get("season")
		fmt.Fprint(w, `{
			"team": {"id": "333", "location": "Alabama"},
			"events": [{"id": "1", "date": "2024-08-31T23:00Z", "competitions": [{"competitors": [
				{"id": "333", "score": {"value": 63.0, "displayValue": "63"}},
				{"id": "98", "score": {"value": 0.0, "displayValue": "0"}}
			]}]}]
		}`)
	})

	schedule, err := c.FetchTeamSchedule(context.Background(), testQuery, "333")
	require.NoError(t, err)

	assert.Equal(t, "/site/sports/football/college-football/teams/333/schedule", gotPath)
	assert.Equal(t, "2024", gotSeason)
	assert.Equal(t, models.TeamID("333"), schedule.Team.ID)
	assert.Equal(t, "Alabama", schedule.Team.Location)
	require.Len(t, schedule.Events, 1)
}

func TestClient_FetchTeamScheduleUnknownDates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"team": {"id": "1", "location": "Alpha"},
			"events": [
				{"id": "1", "date": "TBD", "competitions": [{"competitors": [
					{"id": "1", "score": {"value": 30.0}}, {"id": "2", "score": {"value": 10.0}}
				]}]},
				{"id": "2", "date": "2024-09-14", "competitions": [{"competitors": [
					{"id": "1", "score": {"value": 21.0}}, {"id": "3", "score": {"value": 14.0}}
				]}]}
			]
		}`)
	})

	schedule, err := c.FetchTeamSchedule(context.Background(), testQuery, "1")
	require.NoError(t, err, "an unparseable date must not drop the team")
	require.Len(t, schedule.Events, 2)
	assert.True(t, schedule.Events[0].Date.IsZero())

	result, ok := schedule.Events[0].Result("1")
	require.True(t, ok)
	assert.Equal(t, models.GameResult{Opponent: "2", Scored: 30, Allowed: 10}, result)
}

func TestClient_StatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
	})

	_, err := c.FetchTeamSchedule(context.Background(), testQuery, "333")
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "upstream unavailable")
}

func TestClient_SingleAttempt(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.FetchTeamPage(context.Background(), testQuery, 1)
	require.Error(t, err)
	assert.Equal(t, 1, calls, "requests are never retried")
}

func TestClient_MalformedPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"team": {"id": "333"}, "events": "not-a-list"}`)
	})

	_, err := c.FetchTeamSchedule(context.Background(), testQuery, "333")
	assert.Error(t, err)
}

func TestClient_ScheduleWithoutTeam(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"events": []}`)
	})

	_, err := c.FetchTeamSchedule(context.Background(), testQuery, "333")
	assert.Error(t, err)
}

func TestClient_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"pageIndex":1,"pageCount":1,"items":[]}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchTeamPage(ctx, testQuery, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
