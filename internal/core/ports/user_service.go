package ports

import (
	"context"

	"github.com/conduit-labs/publishing-api/internal/core/domain"
)

// OptimisticFlag is the contract between a caller rendering a speculative
// derived boolean (favorited, following) and the mutation that settles it.
// The operation calls Confirm with the settled value on success and Revert
// exactly once on failure; it never touches a value it has no reason to
// believe speculative. Either function may be nil.
type OptimisticFlag struct {
	Confirm func(value bool)
	Revert  func()
}

// SignUpInput carries the attributes settable by the creator role.
type SignUpInput struct {
	Username string
	Email    string
	Password string
}

// SignInInput carries sign-in credentials.
type SignInInput struct {
	Email    string
	Password string
}

// UpdateProfileInput updates the acting user's own attributes. Nil fields are
// left untouched.
type UpdateProfileInput struct {
	Email    *string
	Username *string
	Password *string
	Bio      *string
	ImageURL *string
}

// AuthSession is a user together with a freshly issued token.
type AuthSession struct {
	User  *domain.User
	Token string
}

// Profile is the public view of a user. IsFollowed is derived relative to
// the acting user.
type Profile struct {
	Username   string
	Bio        string
	ImageURL   string
	IsFollowed bool
}

// UserService implements account lifecycle and the relational mutations a
// user performs on their own relation sets.
type UserService interface {
	SignUp(ctx context.Context, in SignUpInput) (*AuthSession, error)
	SignIn(ctx context.Context, in SignInInput) (*AuthSession, error)
	// AuthenticatedUser resolves a bearer token to its user. An invalid or
	// stale token yields (nil, nil): absent identity, not a failure.
	AuthenticatedUser(ctx context.Context, token string) (*domain.User, error)
	GetProfile(ctx context.Context, username, actorID string) (*Profile, error)
	UpdateProfile(ctx context.Context, actorID string, in UpdateProfileInput) (*domain.User, error)

	Follow(ctx context.Context, actorID, username string, flag *OptimisticFlag) (*Profile, error)
	Unfollow(ctx context.Context, actorID, username string, flag *OptimisticFlag) (*Profile, error)
	Favorite(ctx context.Context, actorID, slug string, flag *OptimisticFlag) (*ArticleView, error)
	Unfavorite(ctx context.Context, actorID, slug string, flag *OptimisticFlag) (*ArticleView, error)
}
