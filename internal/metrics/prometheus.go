package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for rating runs

var (
	// API Call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sos_api_calls_total",
			Help: "Total number of ESPN API calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sos_api_call_duration_seconds",
			Help:    "Duration of API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Discovery metrics
	DiscoveryPagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sos_discovery_pages_total",
			Help: "Total number of team listing pages fetched",
		},
	)

	DiscoveryRefsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sos_discovery_refs_dropped_total",
			Help: "Total number of team references that did not contain a team id",
		},
	)

	// Fetch metrics
	SchedulesFetchedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sos_schedule_fetch_success_total",
			Help: "Total number of team schedules fetched",
		},
	)

	SchedulesDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sos_schedule_fetch_dropped_total",
			Help: "Total number of team schedules dropped after a failed fetch",
		},
	)

	SchedulesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sos_schedule_fetch_in_flight",
			Help: "Number of schedule fetches currently in flight",
		},
	)

	// Rating metrics
	TeamsRated = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sos_teams_rated",
			Help: "Number of teams rated in the last run",
		},
	)

	GamesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sos_games_skipped_total",
			Help: "Total number of games left out of a rating",
		},
		[]string{"reason"},
	)

	// Run metrics
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sos_runs_total",
			Help: "Total number of rating runs",
		},
		[]string{"status"},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sos_run_duration_seconds",
			Help:    "Duration of rating runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	LastSuccessfulRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sos_last_successful_run_timestamp",
			Help: "Timestamp of last successful rating run",
		},
	)

	// Publisher metrics
	PublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sos_publish_total",
			Help: "Total number of rating snapshot publications",
		},
		[]string{"publisher", "status"},
	)

	PublishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sos_publish_duration_seconds",
			Help:    "Duration of rating snapshot publications in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"publisher"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sos_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)
)

// Game skip reasons
const (
	SkipNoResult        = "no_result"
	SkipUnknownOpponent = "unknown_opponent"
	SkipEmptyBaseline   = "empty_baseline"
)

// RecordAPICall records an API call metric
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordDiscoveryPage records a fetched listing page and its unusable refs
func RecordDiscoveryPage(dropped int) {
	DiscoveryPagesTotal.Inc()
	DiscoveryRefsDropped.Add(float64(dropped))
}

// RecordScheduleFetch records the outcome of a schedule fetch
func RecordScheduleFetch(ok bool) {
	if ok {
		SchedulesFetchedTotal.Inc()
		return
	}
	SchedulesDroppedTotal.Inc()
}

// RecordGameSkipped records a game that did not count towards a rating
func RecordGameSkipped(reason string) {
	GamesSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordRun records a rating run
func RecordRun(status string, duration float64, teamsRated int) {
	RunsTotal.WithLabelValues(status).Inc()
	RunDuration.Observe(duration)

	if status == "success" {
		TeamsRated.Set(float64(teamsRated))
		LastSuccessfulRun.SetToCurrentTime()
	}
}

// RecordPublish records a snapshot publication
func RecordPublish(publisher, status string, duration float64) {
	PublishTotal.WithLabelValues(publisher, status).Inc()
	PublishDuration.WithLabelValues(publisher).Observe(duration)
}
