package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const cachePrefix = "folio:cache:"

// CacheKey joins parts under the cache namespace.
func CacheKey(parts ...string) string {
	return cachePrefix + strings.Join(parts, ":")
}

// cacheIndexKey names the set tracking every cache key written for a
// website, so one website can be dropped without SCAN.
func cacheIndexKey(websiteID uuid.UUID) string {
	return "folio:cache-index:" + websiteID.String()
}

// PageCache stores rendered read payloads grouped by website.
type PageCache struct {
	client *Client
}

func NewPageCache(c *Client) *PageCache {
	return &PageCache{client: c}
}

// Get returns the cached payload; ok is false on a miss.
func (p *PageCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := p.client.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis.PageCache.Get: %w", err)
	}
	return val, true, nil
}

// Set stores value under key and records key in the website's index.
func (p *PageCache) Set(ctx context.Context, websiteID uuid.UUID, key string, value []byte, ttl time.Duration) error {
	index := cacheIndexKey(websiteID)
	_, err := p.client.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, value, ttl)
		pipe.SAdd(ctx, index, key)
		pipe.Expire(ctx, index, 2*ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis.PageCache.Set: %w", err)
	}
	return nil
}

// InvalidateWebsite deletes every cached payload of the website. Deleting
// an already empty index is a no-op, so repeated calls are safe.
func (p *PageCache) InvalidateWebsite(ctx context.Context, websiteID uuid.UUID) error {
	index := cacheIndexKey(websiteID)
	keys, err := p.client.client.SMembers(ctx, index).Result()
	if err != nil {
		return fmt.Errorf("redis.PageCache.InvalidateWebsite: members: %w", err)
	}
	keys = append(keys, index)
	if err := p.client.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis.PageCache.InvalidateWebsite: del: %w", err)
	}
	return nil
}
