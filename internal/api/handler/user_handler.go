package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/conduit-labs/publishing-api/internal/api/metrics"
	"github.com/conduit-labs/publishing-api/internal/api/middleware"
	"github.com/conduit-labs/publishing-api/internal/core/domain"
	"github.com/conduit-labs/publishing-api/internal/core/ports"
)

// UserHandler handles account registration, sign-in, and the current-user
// endpoints.
type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type signUpPayload struct {
	Username string `json:"username" validate:"required,alphanum,max=50"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,max=100"`
}

type signUpRequest struct {
	User signUpPayload `json:"user"`
}

type signInPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signInRequest struct {
	User signInPayload `json:"user"`
}

type updateUserPayload struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	Bio      *string `json:"bio"`
	Image    *string `json:"image"`
}

type updateUserRequest struct {
	User updateUserPayload `json:"user"`
}

type userBody struct {
	Email    string `json:"email"`
	Token    string `json:"token,omitempty"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Image    string `json:"image"`
}

type userResponse struct {
	User userBody `json:"user"`
}

func newUserResponse(u *domain.User, token string) userResponse {
	return userResponse{User: userBody{
		Email:    u.Email,
		Token:    token,
		Username: u.Username,
		Bio:      u.Bio,
		Image:    u.ImageURL,
	}}
}

// SignUp registers a new account.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      signUpRequest  true  "Registration details"
// @Success      201   {object}  userResponse
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	session, err := h.users.SignUp(c.Request().Context(), ports.SignUpInput{
		Username: req.User.Username,
		Email:    req.User.Email,
		Password: req.User.Password,
	})
	if err != nil {
		return err
	}

	metrics.SessionsIssuedTotal.WithLabelValues("signup").Inc()
	return c.JSON(http.StatusCreated, newUserResponse(session.User, session.Token))
}

// SignIn authenticates a user and returns a session token.
//
// @Summary      Sign in
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      signInRequest  true  "Credentials"
// @Success      200   {object}  userResponse
// @Failure      401   {object}  map[string]string
// @Router       /users/login [post]
func (h *UserHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	session, err := h.users.SignIn(c.Request().Context(), ports.SignInInput{
		Email:    req.User.Email,
		Password: req.User.Password,
	})
	if err != nil {
		return err
	}

	metrics.SessionsIssuedTotal.WithLabelValues("signin").Inc()
	return c.JSON(http.StatusOK, newUserResponse(session.User, session.Token))
}

// Current returns the authenticated user. The token is re-resolved against
// the store, so a deleted account yields 401 even with a valid signature.
func (h *UserHandler) Current(c echo.Context) error {
	token, _ := c.Get(middleware.ContextToken).(string)
	user, err := h.users.AuthenticatedUser(c.Request().Context(), token)
	if err != nil {
		return err
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid token")
	}
	return c.JSON(http.StatusOK, newUserResponse(user, token))
}

// Update applies profile changes to the authenticated user.
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), actorID(c), ports.UpdateProfileInput{
		Email:    req.User.Email,
		Username: req.User.Username,
		Password: req.User.Password,
		Bio:      req.User.Bio,
		ImageURL: req.User.Image,
	})
	if err != nil {
		return err
	}

	token, _ := c.Get(middleware.ContextToken).(string)
	return c.JSON(http.StatusOK, newUserResponse(user, token))
}
