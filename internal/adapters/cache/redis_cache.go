package cache

import (
	"context"
	"errors"
	"time"

	"SahayCare/internal/core/ports"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// redisCache implements the ports.Cache interface on a Redis instance.
type redisCache struct {
	client *redis.Client
	log    zerolog.Logger
}

var _ ports.Cache = (*redisCache)(nil) // Ensure compliance

// NewRedisCache connects to Redis and verifies the connection before
// returning the cache.
func NewRedisCache(ctx context.Context, addr, password string, db int, baseLogger *zerolog.Logger) (ports.Cache, error) {
	log := baseLogger.With().Str("component", "redis_cache").Logger()

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Error().Err(err).Str("addr", addr).Msg("Failed to ping redis")
		return nil, err
	}

	log.Info().Str("addr", addr).Msg("Redis connection established")
	return &redisCache{client: client, log: log}, nil
}

// Get returns the cached value and whether the key was present. A missing
// key is not an error.
func (c *redisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		c.log.Error().Err(err).Str("key", key).Msg("Failed to read cache key")
		return "", false, err
	}
	return value, true, nil
}

func (c *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("Failed to write cache key")
		return err
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("Failed to delete cache key")
		return err
	}
	return nil
}
