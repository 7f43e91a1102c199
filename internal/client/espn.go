package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"sosratings/internal/metrics"
	"sosratings/internal/models"

	"github.com/rs/zerolog/log"
)

const (
	DefaultPageLimit = 1000
	DefaultUserAgent = "sosratings/1.0"

	// regular season type on the core API
	regularSeasonType = 2

	maxErrorBodyBytes = 512
)

// Endpoint labels used for metrics and logs
const (
	EndpointTeams    = "teams"
	EndpointSchedule = "schedule"
)

// Client is the ESPN API client. Every request is attempted exactly once.
type Client struct {
	coreBaseURL string
	siteBaseURL string
	pageLimit   int
	userAgent   string
	httpClient  *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithPageLimit sets the page size requested from the teams listing
func WithPageLimit(limit int) Option {
	return func(c *Client) {
		if limit > 0 {
			c.pageLimit = limit
		}
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient creates a new ESPN API client
func NewClient(coreBaseURL, siteBaseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		coreBaseURL: coreBaseURL,
		siteBaseURL: siteBaseURL,
		pageLimit:   DefaultPageLimit,
		userAgent:   DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 32,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// StatusError is returned when the API answers with a non-200 status
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status %d for %s: %s", e.StatusCode, e.URL, e.Body)
}

// get performs a single GET request and returns the response body
func (c *Client) get(ctx context.Context, endpoint, url string, params map[string]string) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	if len(params) > 0 {
		q := req.URL.Query()
		for key, value := range params {
			q.Add(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}

	log.Debug().
		Str("url", req.URL.String()).
		Str("endpoint", endpoint).
		Msg("Making API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPICall(endpoint, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordAPICall(endpoint, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	metrics.RecordAPICall(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		if len(body) > maxErrorBodyBytes {
			body = body[:maxErrorBodyBytes]
		}
		return nil, &StatusError{
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	log.Debug().
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Int("size", len(body)).
		Msg("API request successful")

	return body, nil
}

// TeamsURL returns the teams listing URL for the query, without paging parameters
func (c *Client) TeamsURL(q models.SeasonQuery) string {
	if q.HasGroup() {
		return fmt.Sprintf("%s/sports/%s/leagues/%s/seasons/%d/types/%d/groups/%d/teams",
			c.coreBaseURL, q.Sport, q.League, q.Season, regularSeasonType, q.Group)
	}
	return fmt.Sprintf("%s/sports/%s/leagues/%s/seasons/%d/teams",
		c.coreBaseURL, q.Sport, q.League, q.Season)
}

// ScheduleURL returns the schedule URL of a team, without the season parameter
func (c *Client) ScheduleURL(q models.SeasonQuery, teamID models.TeamID) string {
	return fmt.Sprintf("%s/sports/%s/%s/teams/%s/schedule",
		c.siteBaseURL, q.Sport, q.League, teamID)
}

// FetchTeamPage fetches one page (1-indexed) of the teams listing
func (c *Client) FetchTeamPage(ctx context.Context, q models.SeasonQuery, page int) (*models.TeamPage, error) {
	body, err := c.get(ctx, EndpointTeams, c.TeamsURL(q), map[string]string{
		"limit": strconv.Itoa(c.pageLimit),
		"page":  strconv.Itoa(page),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch teams page %d: %w", page, err)
	}

	var teamPage models.TeamPage
	if err := json.Unmarshal(body, &teamPage); err != nil {
		return nil, fmt.Errorf("failed to unmarshal teams page %d: %w", page, err)
	}

	return &teamPage, nil
}

// FetchTeamSchedule fetches a team's schedule for the query season
func (c *Client) FetchTeamSchedule(ctx context.Context, q models.SeasonQuery, teamID models.TeamID) (*models.TeamSchedule, error) {
	body, err := c.get(ctx, EndpointSchedule, c.ScheduleURL(q, teamID), map[string]string{
		"season": strconv.Itoa(q.Season),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule for team %s: %w", teamID, err)
	}

	var schedule models.TeamSchedule
	if err := json.Unmarshal(body, &schedule); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schedule for team %s: %w", teamID, err)
	}

	if schedule.Team.ID == "" {
		return nil, fmt.Errorf("schedule for team %s has no team id", teamID)
	}

	return &schedule, nil
}
