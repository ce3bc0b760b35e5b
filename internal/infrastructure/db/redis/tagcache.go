package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	tagCacheKey = "tags:popular"
	tagCacheTTL = 5 * time.Minute
)

// TagCache caches the popular-tags scan, which is a full distinct over the
// articles collection.
type TagCache struct {
	client *redis.Client
}

// NewTagCache wraps a Redis client.
func NewTagCache(client *redis.Client) *TagCache {
	return &TagCache{client: client}
}

// Get returns the cached tag list, or a nil slice on a miss.
func (c *TagCache) Get(ctx context.Context) ([]string, error) {
	raw, err := c.client.Get(ctx, tagCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tag cache get: %w", err)
	}

	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, fmt.Errorf("tag cache decode: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

// Set stores the tag list, expiring after tagCacheTTL.
func (c *TagCache) Set(ctx context.Context, tags []string) error {
	raw, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("tag cache encode: %w", err)
	}
	return c.client.Set(ctx, tagCacheKey, raw, tagCacheTTL).Err()
}
