package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextMiddleware(t *testing.T) {
	var got context.Context

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(TracingMiddleware())
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", uint(12))
		return c.Next()
	})
	app.Use(ContextMiddleware())
	app.Use(StructuredLogger())
	app.Get("/", func(c *fiber.Ctx) error {
		got = c.UserContext()
		return c.SendStatus(fiber.StatusNoContent)
	})

	t.Run("generates a correlation id", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

		cid := resp.Header.Get(CorrelationHeader)
		assert.NotEmpty(t, cid)
		assert.Equal(t, cid, got.Value(CorrelationIDKey))
		assert.Equal(t, uint(12), got.Value(UserIDKey))
		assert.NotEmpty(t, got.Value(RequestIDKey))
		assert.Equal(t, resp.Header.Get("X-Trace-ID"), got.Value(TraceIDKey))
	})

	t.Run("keeps a caller correlation id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(CorrelationHeader, "abc-123")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "abc-123", resp.Header.Get(CorrelationHeader))
		assert.Equal(t, "abc-123", got.Value(CorrelationIDKey))
	})
}
