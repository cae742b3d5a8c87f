package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campus/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	PostKeyPrefix = "post:%d"
	PostTTL       = 30 * time.Minute
)

// PostKey is the cache key for a single post.
func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// PostKeys maps post ids to their cache keys, skipping zero ids.
func PostKeys(ids ...uint) []string {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != 0 {
			keys = append(keys, PostKey(id))
		}
	}
	return keys
}

// GetJSON reads key into dest. It returns (false, nil) on a miss or when caching is disabled.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	s, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores v under key with ttl.
func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, b, ttl).Err()
}

// Aside serves dest from Redis when present; otherwise fetch fills dest and the
// result is stored best-effort. Redis failures degrade to a direct fetch.
func (c *Cache) Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := c.GetJSON(ctx, key, dest)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	if found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	if err := c.SetJSON(ctx, key, dest, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

// Invalidate deletes keys. Errors are logged; a stale entry expires with its TTL.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed",
			slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}

// InvalidatePosts drops the cached copies of the given posts.
func (c *Cache) InvalidatePosts(ctx context.Context, ids ...uint) {
	c.Invalidate(ctx, PostKeys(ids...)...)
}
