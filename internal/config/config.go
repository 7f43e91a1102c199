package config

import (
	"fmt"
	"os"
	"time"

	"sosratings/internal/models"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// Config holds all application configuration
type Config struct {
	// ESPN API
	ESPNCoreBaseURL string        `envconfig:"ESPN_CORE_BASE_URL" default:"https://sports.core.api.espn.com/v2"`
	ESPNSiteBaseURL string        `envconfig:"ESPN_SITE_BASE_URL" default:"https://site.api.espn.com/apis/site/v2"`
	ESPNTimeout     time.Duration `envconfig:"ESPN_TIMEOUT" default:"30s"`
	ESPNPageLimit   int           `envconfig:"ESPN_PAGE_LIMIT" default:"1000"`
	ESPNUserAgent   string        `envconfig:"ESPN_USER_AGENT" default:"sosratings/1.0"`
	MaxConcurrency  int           `envconfig:"MAX_CONCURRENCY" default:"8"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Ratings query
	Sport  string `envconfig:"RATINGS_SPORT" default:"football"`
	League string `envconfig:"RATINGS_LEAGUE" default:"college-football"`
	Season int    `envconfig:"RATINGS_SEASON" default:"0"` // 0 selects the current year
	Group  int    `envconfig:"RATINGS_GROUP" default:"0"`

	// Scheduler
	RatingsCron string `envconfig:"RATINGS_CRON" default:"0 6 * * *"`
	RunOnStart  bool   `envconfig:"RUN_ON_START" default:"true"`

	// Database
	DatabaseEnabled  bool   `envconfig:"DATABASE_ENABLED" default:"false"`
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"sosratings"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"sosratings"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" default:""`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisEnabled  bool          `envconfig:"REDIS_ENABLED" default:"false"`
	RedisHost     string        `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int           `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	RedisTTL      time.Duration `envconfig:"REDIS_TTL" default:"168h"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if present
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.ESPNCoreBaseURL == "" || c.ESPNSiteBaseURL == "" {
		return fmt.Errorf("ESPN_CORE_BASE_URL and ESPN_SITE_BASE_URL are required")
	}

	if c.ESPNTimeout <= 0 {
		return fmt.Errorf("ESPN_TIMEOUT must be positive")
	}

	if c.ESPNPageLimit < 1 {
		return fmt.Errorf("ESPN_PAGE_LIMIT must be at least 1")
	}

	if c.MaxConcurrency < 1 {
		return fmt.Errorf("MAX_CONCURRENCY must be at least 1")
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL %q is invalid: %w", c.LogLevel, err)
	}

	if c.Season < 0 {
		return fmt.Errorf("RATINGS_SEASON must not be negative")
	}

	if err := c.Query().Validate(); err != nil {
		return fmt.Errorf("invalid ratings query: %w", err)
	}

	if c.DatabaseEnabled && c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required when DATABASE_ENABLED is set")
	}

	return nil
}

// Query returns the configured season query. A zero season resolves to the
// current year.
func (c *Config) Query() models.SeasonQuery {
	season := c.Season
	if season == 0 {
		season = time.Now().Year()
	}

	return models.SeasonQuery{
		Sport:  c.Sport,
		League: c.League,
		Season: season,
		Group:  c.Group,
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// MustLoad loads configuration or exits on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
