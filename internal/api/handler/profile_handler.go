package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/conduit-labs/publishing-api/internal/api/metrics"
	"github.com/conduit-labs/publishing-api/internal/core/ports"
)

// ProfileHandler handles public profiles and the follow relation.
type ProfileHandler struct {
	users ports.UserService
}

func NewProfileHandler(users ports.UserService) *ProfileHandler {
	return &ProfileHandler{users: users}
}

type profileBody struct {
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	Image     string `json:"image"`
	Following bool   `json:"following"`
}

type profileResponse struct {
	Profile profileBody `json:"profile"`
}

func newProfileResponse(p *ports.Profile) profileResponse {
	return profileResponse{Profile: profileBody{
		Username:  p.Username,
		Bio:       p.Bio,
		Image:     p.ImageURL,
		Following: p.IsFollowed,
	}}
}

// Get returns a public profile, with the following flag derived for the
// acting user.
func (h *ProfileHandler) Get(c echo.Context) error {
	profile, err := h.users.GetProfile(c.Request().Context(), c.Param("username"), actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newProfileResponse(profile))
}

// Follow adds the named user to the acting user's followed set. The client
// may render the following flag optimistically; a failure here fires the
// revert counter and surfaces the error.
func (h *ProfileHandler) Follow(c echo.Context) error {
	flag := &ports.OptimisticFlag{
		Revert: func() { metrics.OptimisticRollbacksTotal.WithLabelValues("follow").Inc() },
	}
	profile, err := h.users.Follow(c.Request().Context(), actorID(c), c.Param("username"), flag)
	if err != nil {
		return err
	}
	metrics.RelationMutationsTotal.WithLabelValues("follow").Inc()
	return c.JSON(http.StatusOK, newProfileResponse(profile))
}

// Unfollow removes the named user from the acting user's followed set.
func (h *ProfileHandler) Unfollow(c echo.Context) error {
	flag := &ports.OptimisticFlag{
		Revert: func() { metrics.OptimisticRollbacksTotal.WithLabelValues("unfollow").Inc() },
	}
	profile, err := h.users.Unfollow(c.Request().Context(), actorID(c), c.Param("username"), flag)
	if err != nil {
		return err
	}
	metrics.RelationMutationsTotal.WithLabelValues("unfollow").Inc()
	return c.JSON(http.StatusOK, newProfileResponse(profile))
}
