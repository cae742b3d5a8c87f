// Package cache provides the Redis client and cache-aside helpers for post reads.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"campus/internal/middleware"

	"github.com/redis/go-redis/v9"
)

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// Cache wraps a Redis client. A nil *Cache or one without a client is a valid,
// always-missing cache, so callers never need to branch on Redis availability.
type Cache struct {
	client *redis.Client
}

// New wraps an existing client and instruments it with the Redis error counter.
func New(client *redis.Client) *Cache {
	if client != nil {
		client.AddHook(metricsHook{})
	}
	return &Cache{client: client}
}

// Connect dials addr (host:port or redis:// URL). Failures are logged and
// yield a disabled cache rather than an error.
func Connect(addr string) *Cache {
	if addr == "" {
		return &Cache{}
	}

	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			middleware.Logger.Warn("invalid redis url, continuing without cache",
				slog.String("addr", addr), slog.String("error", err.Error()))
			return &Cache{}
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("redis unavailable, continuing without cache", slog.String("error", err.Error()))
		_ = client.Close()
		return &Cache{}
	}
	middleware.Logger.Info("redis connected", slog.String("addr", opts.Addr))
	return New(client)
}

// Client returns the underlying client, or nil when caching is disabled.
func (c *Cache) Client() *redis.Client {
	if c == nil {
		return nil
	}
	return c.client
}

// Enabled reports whether a Redis client is attached.
func (c *Cache) Enabled() bool {
	return c.Client() != nil
}

// Ping checks Redis connectivity; a disabled cache is always healthy.
func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the client.
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
