package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-at-least-32-chars"

func signToken(t *testing.T, secret, sub string, method jwt.SigningMethod) string {
	t.Helper()
	token := jwt.NewWithClaims(method, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newAuthApp() *fiber.App {
	app := fiber.New()
	app.Use(OptionalAuth(testSecret))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("userID").(uint)
		return c.JSON(fiber.Map{"user_id": uid})
	})
	return app
}

func TestOptionalAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"no header passes through", "", http.StatusOK},
		{"valid token", "Bearer " + signToken(t, testSecret, "7", jwt.SigningMethodHS256), http.StatusOK},
		{"wrong secret", "Bearer " + signToken(t, "another-secret-another-secret-xx", "7", jwt.SigningMethodHS256), http.StatusUnauthorized},
		{"non numeric subject", "Bearer " + signToken(t, testSecret, "alice", jwt.SigningMethodHS256), http.StatusUnauthorized},
		{"malformed header", "Token abc", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := newAuthApp().Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestParseUserID(t *testing.T) {
	id, err := ParseUserID(signToken(t, testSecret, "42", jwt.SigningMethodHS256), testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	_, err = ParseUserID(signToken(t, testSecret, "0", jwt.SigningMethodHS256), testSecret)
	assert.Error(t, err)
}
