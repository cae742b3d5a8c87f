package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCheckRateLimit_BypassedOutsideProduction(t *testing.T) {
	for _, env := range []string{"test", "development"} {
		t.Run(env, func(t *testing.T) {
			t.Setenv("APP_ENV", env)
			allowed, err := CheckRateLimit(context.Background(), nil, "comment", "1", 1, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		})
	}
}

func TestCheckRateLimit_EnforcesWindow(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	mr, rdb := newMiniRedis(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := CheckRateLimit(ctx, rdb, "comment", "user:1", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err := CheckRateLimit(ctx, rdb, "comment", "user:1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	mr.FastForward(2 * time.Minute)
	allowed, err = CheckRateLimit(ctx, rdb, "comment", "user:1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCheckRateLimit_NilRedisInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	_, err := CheckRateLimit(context.Background(), nil, "comment", "1", 1, time.Minute)
	assert.Error(t, err)
}

func TestRateLimit_Middleware(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	_, rdb := newMiniRedis(t)

	app := fiber.New()
	app.Post("/comment", RateLimit(rdb, 1, time.Minute, "create_comment"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	first, err := app.Test(httptest.NewRequest(http.MethodPost, "/comment", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, first.StatusCode)

	second, err := app.Test(httptest.NewRequest(http.MethodPost, "/comment", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
}

func TestRateLimit_FailsOpenWithoutRedis(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	app := fiber.New()
	app.Post("/comment", RateLimit(nil, 1, time.Minute, "create_comment"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/comment", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}
