package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sjktech/odledger/internal/domain"
	apperrors "github.com/sjktech/odledger/pkg/errors"
)

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps a Redis client as a ResultCache with a fixed entry TTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) ResultCache {
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, key string) (*domain.SimulationResult, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.WrapCacheError(err)
	}

	var result domain.SimulationResult
	if err := json.Unmarshal(payload, &result); err != nil {
		// A corrupt entry behaves like a miss for the caller, but the error
		// surfaces so the read gets logged and the entry overwritten.
		return nil, apperrors.WrapCacheError(err)
	}
	return &result, nil
}

func (c *redisCache) Set(ctx context.Context, key string, result *domain.SimulationResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return apperrors.WrapCacheError(err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return apperrors.WrapCacheError(err)
	}
	return nil
}
