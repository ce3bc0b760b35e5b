package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/conduit-labs/publishing-api/internal/api/middleware"
)

// actorID extracts the acting user id injected by the auth middleware.
// Empty when the request is unauthenticated (guest).
func actorID(c echo.Context) string {
	id, _ := c.Get(middleware.ContextUserID).(string)
	return id
}
