// Package cache publishes the latest computed ratings to Redis as a
// leaderboard.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sosratings/internal/metrics"
	"sosratings/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "sos:ratings:"

// Config holds Redis configuration
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration // 0 keeps keys until the next publish
}

// RedisCache keeps one sorted set of overall ratings per season query and
// a hash with each team's full rating.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Int("db", cfg.DB).
		Msg("Successfully connected to Redis")

	return &RedisCache{client: client, ttl: cfg.TTL}, nil
}

// Key returns the leaderboard key of a query
func Key(q models.SeasonQuery) string {
	return keyPrefix + q.Key()
}

// DetailsKey returns the key of the hash holding each team's rating
func DetailsKey(q models.SeasonQuery) string {
	return Key(q) + ":details"
}

// Name identifies the cache as a snapshot publisher
func (c *RedisCache) Name() string {
	return "redis"
}

// Publish replaces the query's leaderboard with the snapshot's ratings
func (c *RedisCache) Publish(ctx context.Context, snapshot *models.RatingSnapshot) error {
	start := time.Now()
	err := c.publish(ctx, snapshot)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordPublish(c.Name(), status, time.Since(start).Seconds())

	return err
}

func (c *RedisCache) publish(ctx context.Context, snapshot *models.RatingSnapshot) error {
	key := Key(snapshot.Query)
	detailsKey := DetailsKey(snapshot.Query)

	members := make([]redis.Z, 0, len(snapshot.Ratings))
	details := make(map[string]interface{}, len(snapshot.Ratings))
	for _, rating := range snapshot.Ratings {
		data, err := json.Marshal(rating)
		if err != nil {
			return fmt.Errorf("failed to marshal rating for team %s: %w", rating.Team.ID, err)
		}

		members = append(members, redis.Z{
			Score:  rating.OverallRating(),
			Member: string(rating.Team.ID),
		})
		details[string(rating.Team.ID)] = data
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key, detailsKey)
		if len(members) > 0 {
			pipe.ZAdd(ctx, key, members...)
			pipe.HSet(ctx, detailsKey, details)
		}
		if c.ttl > 0 {
			pipe.Expire(ctx, key, c.ttl)
			pipe.Expire(ctx, detailsKey, c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to publish ratings to %s: %w", key, err)
	}

	log.Debug().
		Str("key", key).
		Str("run_id", snapshot.RunID.String()).
		Int("teams", len(members)).
		Msg("Ratings published to Redis")

	return nil
}

// Top returns the n best rated teams of the query's leaderboard. n <= 0
// returns every team.
func (c *RedisCache) Top(ctx context.Context, q models.SeasonQuery, n int) ([]models.TeamRating, error) {
	stop := int64(n - 1)
	if n <= 0 {
		stop = -1
	}

	ids, err := c.client.ZRevRange(ctx, Key(q), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	values, err := c.client.HMGet(ctx, DetailsKey(q), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read rating details: %w", err)
	}

	ratings := make([]models.TeamRating, 0, len(values))
	for i, value := range values {
		data, ok := value.(string)
		if !ok {
			log.Warn().Str("team_id", ids[i]).Msg("Missing rating details in cache")
			continue
		}

		var rating models.TeamRating
		if err := json.Unmarshal([]byte(data), &rating); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rating for team %s: %w", ids[i], err)
		}
		ratings = append(ratings, rating)
	}

	return ratings, nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
