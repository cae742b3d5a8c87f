package middleware

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var errInvalidSubject = errors.New("invalid token subject")

// ParseUserID validates an HS256 token and returns the user id carried in its "sub" claim.
func ParseUserID(tokenString, secret string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("invalid or expired token")
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return 0, errInvalidSubject
	}
	id, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || id == 0 {
		return 0, errInvalidSubject
	}
	return uint(id), nil
}

// OptionalAuth verifies a bearer token when one is presented and stores its subject
// in c.Locals("userID"). Requests without an Authorization header pass through and
// handlers fall back to the user id carried in the request.
func OptionalAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Next()
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}
		if secret == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Token authentication is not configured",
			})
		}

		userID, err := ParseUserID(parts[1], secret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("userID", userID)
		return c.Next()
	}
}
