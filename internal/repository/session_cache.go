package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/urbandrives/storefront/internal/domain/session"
)

// RedisSessionCache stores resolved sessions in Redis under their token.
type RedisSessionCache struct {
	client *redis.Client
	prefix string
}

// NewRedisSessionCache creates a new RedisSessionCache.
func NewRedisSessionCache(client *redis.Client, prefix string) *RedisSessionCache {
	return &RedisSessionCache{client: client, prefix: prefix}
}

// Get returns the cached session, or nil on a miss.
func (c *RedisSessionCache) Get(ctx context.Context, token string) (*session.Current, error) {
	raw, err := c.client.Get(ctx, c.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached session: %w", err)
	}
	var cur session.Current
	if err := json.Unmarshal(raw, &cur); err != nil {
		return nil, fmt.Errorf("failed to decode cached session: %w", err)
	}
	return &cur, nil
}

// Set caches cur for ttl.
func (c *RedisSessionCache) Set(ctx context.Context, cur *session.Current, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(cur)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := c.client.Set(ctx, c.key(cur.Token), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache session: %w", err)
	}
	return nil
}

// Delete evicts the session for token.
func (c *RedisSessionCache) Delete(ctx context.Context, token string) error {
	if err := c.client.Del(ctx, c.key(token)).Err(); err != nil {
		return fmt.Errorf("failed to evict session: %w", err)
	}
	return nil
}

func (c *RedisSessionCache) key(token string) string {
	return c.prefix + ":session:" + token
}
