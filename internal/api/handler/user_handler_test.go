package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/conduit-labs/publishing-api/internal/core/domain"
	"github.com/conduit-labs/publishing-api/internal/core/ports"
)

type stubUserService struct {
	signUpFn     func(ctx context.Context, in ports.SignUpInput) (*ports.AuthSession, error)
	signInFn     func(ctx context.Context, in ports.SignInInput) (*ports.AuthSession, error)
	getProfileFn func(ctx context.Context, username, actorID string) (*ports.Profile, error)
	followFn     func(ctx context.Context, actorID, username string, flag *ports.OptimisticFlag) (*ports.Profile, error)
}

func (s *stubUserService) SignUp(ctx context.Context, in ports.SignUpInput) (*ports.AuthSession, error) {
	return s.signUpFn(ctx, in)
}

func (s *stubUserService) SignIn(ctx context.Context, in ports.SignInInput) (*ports.AuthSession, error) {
	return s.signInFn(ctx, in)
}

func (s *stubUserService) AuthenticatedUser(context.Context, string) (*domain.User, error) {
	return nil, nil
}

func (s *stubUserService) GetProfile(ctx context.Context, username, actorID string) (*ports.Profile, error) {
	return s.getProfileFn(ctx, username, actorID)
}

func (s *stubUserService) UpdateProfile(context.Context, string, ports.UpdateProfileInput) (*domain.User, error) {
	return nil, domain.ErrNotFound
}

func (s *stubUserService) Follow(ctx context.Context, actorID, username string, flag *ports.OptimisticFlag) (*ports.Profile, error) {
	return s.followFn(ctx, actorID, username, flag)
}

func (s *stubUserService) Unfollow(context.Context, string, string, *ports.OptimisticFlag) (*ports.Profile, error) {
	return nil, domain.ErrNotFound
}

func (s *stubUserService) Favorite(context.Context, string, string, *ports.OptimisticFlag) (*ports.ArticleView, error) {
	return nil, domain.ErrNotFound
}

func (s *stubUserService) Unfavorite(context.Context, string, string, *ports.OptimisticFlag) (*ports.ArticleView, error) {
	return nil, domain.ErrNotFound
}

func newTestContext(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestUserHandler_SignUp_Success(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	stub := &stubUserService{
		signUpFn: func(ctx context.Context, in ports.SignUpInput) (*ports.AuthSession, error) {
			if in.Username != "alice" || in.Email != "alice@example.com" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.AuthSession{
				User:  &domain.User{ID: "u1", Username: in.Username, Email: in.Email},
				Token: "token123",
			}, nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := newTestContext(e, http.MethodPost, "/api/users",
		`{"user":{"username":"alice","email":"alice@example.com","password":"password123"}}`)
	if err := h.SignUp(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user envelope, got %v", resp)
	}
	if user["username"] != "alice" || user["token"] != "token123" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
}

func TestUserHandler_SignUp_InvalidPayload(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	stub := &stubUserService{
		signUpFn: func(ctx context.Context, in ports.SignUpInput) (*ports.AuthSession, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := newTestContext(e, http.MethodPost, "/api/users", "not-json")
	if err := h.SignUp(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUserHandler_SignUp_MissingFields(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	stub := &stubUserService{
		signUpFn: func(ctx context.Context, in ports.SignUpInput) (*ports.AuthSession, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := newTestContext(e, http.MethodPost, "/api/users", `{"user":{"username":"alice"}}`)
	if err := h.SignUp(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestUserHandler_SignIn_PropagatesError(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	stub := &stubUserService{
		signInFn: func(ctx context.Context, in ports.SignInInput) (*ports.AuthSession, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewUserHandler(stub)

	c, _ := newTestContext(e, http.MethodPost, "/api/users/login",
		`{"user":{"email":"alice@example.com","password":"wrong"}}`)
	err := h.SignIn(c)
	if err != domain.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials to propagate, got %v", err)
	}
}
