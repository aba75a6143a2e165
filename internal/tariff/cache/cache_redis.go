package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ishemalink/internal/tariff/models"
	"ishemalink/pkg/platform/sentinel"
)

// RedisCache stores the tariff list as one JSON value under models.CacheKey.
type RedisCache struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context) ([]models.Tariff, error) {
	raw, err := c.client.Get(ctx, models.CacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read tariff cache: %w", err)
	}
	var tariffs []models.Tariff
	if err := json.Unmarshal(raw, &tariffs); err != nil {
		return nil, fmt.Errorf("decode tariff cache: %w", err)
	}
	return tariffs, nil
}

func (c *RedisCache) Set(ctx context.Context, tariffs []models.Tariff, ttl time.Duration) error {
	payload, err := json.Marshal(tariffs)
	if err != nil {
		return fmt.Errorf("encode tariff cache: %w", err)
	}
	if err := c.client.Set(ctx, models.CacheKey, payload, ttl).Err(); err != nil {
		return fmt.Errorf("write tariff cache: %w", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context) error {
	if err := c.client.Del(ctx, models.CacheKey).Err(); err != nil {
		return fmt.Errorf("clear tariff cache: %w", err)
	}
	return nil
}
