// Package publisher opens the snapshot publishers enabled in the
// configuration.
package publisher

import (
	"context"
	"fmt"

	"sosratings/internal/cache"
	"sosratings/internal/config"
	"sosratings/internal/repository"
	"sosratings/internal/scheduler"

	"github.com/rs/zerolog/log"
)

// Set is the group of open publishers
type Set struct {
	Publishers []scheduler.Publisher

	db    *repository.Database
	redis *cache.RedisCache
}

// Open connects every enabled publisher. Postgres is required once enabled;
// Redis is optional and skipped when it cannot be reached.
func Open(ctx context.Context, cfg *config.Config) (*Set, error) {
	set := &Set{}

	if cfg.DatabaseEnabled {
		db, err := repository.NewDatabase(ctx, repository.Config{
			Host:     cfg.DatabaseHost,
			Port:     cfg.DatabasePort,
			User:     cfg.DatabaseUser,
			Password: cfg.DatabasePassword,
			Database: cfg.DatabaseName,
			SSLMode:  cfg.DatabaseSSLMode,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}

		set.db = db
		set.Publishers = append(set.Publishers, db.Ratings)
	}

	if cfg.RedisEnabled {
		redisCache, err := cache.NewRedisCache(cache.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.RedisTTL,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		} else {
			set.redis = redisCache
			set.Publishers = append(set.Publishers, redisCache)
		}
	}

	if len(set.Publishers) == 0 {
		log.Warn().Msg("No publisher enabled, ratings will only be logged")
	}

	return set, nil
}

// Health checks the database connection, if one is open
func (s *Set) Health(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.Health(ctx)
}

// Close closes every open connection
func (s *Set) Close() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis connection")
		}
	}
	if s.db != nil {
		s.db.Close()
	}
}
