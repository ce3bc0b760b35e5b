package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Context keys set by the auth middleware.
const (
	ContextUserID = "user_id"
	ContextToken  = "token"
)

// Verifier resolves a bearer token to a user id. Implemented by the token
// service; verification failures yield ok=false, never an error.
type Verifier interface {
	Verify(token string) (userID string, ok bool)
}

// Auth requires a valid bearer token and injects the acting user id into
// context.
func Auth(tokens Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, _, ok := verifyRequest(c, tokens); !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid token")
			}
			return next(c)
		}
	}
}

// OptionalAuth injects the acting user id when a valid bearer token is
// present; requests without one proceed as guests.
func OptionalAuth(tokens Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			verifyRequest(c, tokens)
			return next(c)
		}
	}
}

// verifyRequest parses the Authorization header ("Bearer <jwt>" or
// "Token <jwt>") and, on success, stores the user id and raw token in
// context.
func verifyRequest(c echo.Context, tokens Verifier) (string, string, bool) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	if !strings.EqualFold(parts[0], "bearer") && !strings.EqualFold(parts[0], "token") {
		return "", "", false
	}

	userID, ok := tokens.Verify(parts[1])
	if !ok {
		return "", "", false
	}

	c.Set(ContextUserID, userID)
	c.Set(ContextToken, parts[1])
	return userID, parts[1], true
}
