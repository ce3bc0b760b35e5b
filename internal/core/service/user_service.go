package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/conduit-labs/publishing-api/internal/core/access"
	"github.com/conduit-labs/publishing-api/internal/core/domain"
	"github.com/conduit-labs/publishing-api/internal/core/ports"
)

// UserService implements account lifecycle and the follow/favorite mutations
// a user performs on their own relation sets.
type UserService struct {
	users    ports.UserRepository
	articles ports.ArticleRepository
	tokens   ports.TokenService
	roles    *access.Registry
	policy   *access.Policy
	log      zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	articles ports.ArticleRepository,
	tokens ports.TokenService,
	roles *access.Registry,
	policy *access.Policy,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		users:    users,
		articles: articles,
		tokens:   tokens,
		roles:    roles,
		policy:   policy,
		log:      log,
	}
}

// confirm and revert are nil-safe wrappers around the optimistic contract.
func confirm(flag *ports.OptimisticFlag, value bool) {
	if flag != nil && flag.Confirm != nil {
		flag.Confirm(value)
	}
}

func revert(flag *ports.OptimisticFlag) {
	if flag != nil && flag.Revert != nil {
		flag.Revert()
	}
}

// SignUp registers a new account and issues a session token.
func (s *UserService) SignUp(ctx context.Context, in ports.SignUpInput) (*ports.AuthSession, error) {
	user := &domain.User{Email: in.Email, Username: in.Username}
	res := newResolution(s.roles, s.users, "", user)
	if err := s.policy.CheckAccess(ctx, res, "User", "signUp", access.OpCall); err != nil {
		return nil, err
	}

	if err := domain.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, user.Email, ""); err != nil {
		return nil, err
	}
	if err := s.ensureUsernameFree(ctx, user.Username, ""); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user signed up")
	return &ports.AuthSession{User: user, Token: token}, nil
}

// SignIn verifies credentials and issues a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *UserService) SignIn(ctx context.Context, in ports.SignInInput) (*ports.AuthSession, error) {
	res := newResolution(s.roles, s.users, "", &domain.User{})
	if err := s.policy.CheckAccess(ctx, res, "User", "signIn", access.OpCall); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !VerifyPassword(in.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user signed in")
	return &ports.AuthSession{User: user, Token: token}, nil
}

// AuthenticatedUser resolves a token to its user. Invalid or expired tokens,
// and tokens whose subject no longer exists, yield (nil, nil).
func (s *UserService) AuthenticatedUser(ctx context.Context, token string) (*domain.User, error) {
	userID, ok := s.tokens.Verify(token)
	if !ok {
		return nil, nil
	}
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetProfile returns the public view of a user, deriving the following flag
// relative to the acting user.
func (s *UserService) GetProfile(ctx context.Context, username, actorID string) (*ports.Profile, error) {
	target, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	actor, err := loadActor(ctx, s.users, actorID)
	if err != nil {
		return nil, err
	}
	if actor != nil {
		target.IsFollowed = actor.IsFollowing(target.ID)
	}
	profile := profileOf(target)
	return &profile, nil
}

// UpdateProfile applies the provided fields to the acting user's own
// account, re-checking per-attribute exposure and uniqueness on change.
func (s *UserService) UpdateProfile(ctx context.Context, actorID string, in ports.UpdateProfileInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	res := newResolution(s.roles, s.users, actorID, user)

	if in.Email != nil && *in.Email != user.Email {
		if err := s.policy.CheckAccess(ctx, res, "User", "email", access.OpSet); err != nil {
			return nil, err
		}
		if err := s.ensureEmailFree(ctx, *in.Email, user.ID); err != nil {
			return nil, err
		}
		user.Email = *in.Email
	}
	if in.Username != nil && *in.Username != user.Username {
		if err := s.policy.CheckAccess(ctx, res, "User", "username", access.OpSet); err != nil {
			return nil, err
		}
		if err := s.ensureUsernameFree(ctx, *in.Username, user.ID); err != nil {
			return nil, err
		}
		user.Username = *in.Username
	}
	if in.Password != nil {
		if err := s.policy.CheckAccess(ctx, res, "User", "password", access.OpSet); err != nil {
			return nil, err
		}
		if err := domain.ValidatePassword(*in.Password); err != nil {
			return nil, err
		}
		hash, err := HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if in.Bio != nil {
		if err := s.policy.CheckAccess(ctx, res, "User", "bio", access.OpSet); err != nil {
			return nil, err
		}
		user.Bio = *in.Bio
	}
	if in.ImageURL != nil {
		if err := s.policy.CheckAccess(ctx, res, "User", "imageURL", access.OpSet); err != nil {
			return nil, err
		}
		user.ImageURL = *in.ImageURL
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Follow adds the named user to the acting user's followed set. Idempotent:
// following an already-followed user performs no writes.
func (s *UserService) Follow(ctx context.Context, actorID, username string, flag *ports.OptimisticFlag) (*ports.Profile, error) {
	actor, target, err := s.followPair(ctx, actorID, username, "follow")
	if err != nil {
		revert(flag)
		return nil, err
	}

	if !actor.IsFollowing(target.ID) {
		actor.FollowedUserIDs = append(actor.FollowedUserIDs, target.ID)
		actor.UpdatedAt = time.Now().UTC()
		if err := s.users.Save(ctx, actor); err != nil {
			revert(flag)
			return nil, err
		}
		s.log.Info().Str("user_id", actor.ID).Str("followed_id", target.ID).Msg("user followed")
	}

	target.IsFollowed = true
	confirm(flag, true)
	profile := profileOf(target)
	return &profile, nil
}

// Unfollow removes the named user from the acting user's followed set.
// Idempotent: unfollowing a non-followed user performs no writes.
func (s *UserService) Unfollow(ctx context.Context, actorID, username string, flag *ports.OptimisticFlag) (*ports.Profile, error) {
	actor, target, err := s.followPair(ctx, actorID, username, "unfollow")
	if err != nil {
		revert(flag)
		return nil, err
	}

	if actor.IsFollowing(target.ID) {
		actor.FollowedUserIDs = domain.RemoveID(actor.FollowedUserIDs, target.ID)
		actor.UpdatedAt = time.Now().UTC()
		if err := s.users.Save(ctx, actor); err != nil {
			revert(flag)
			return nil, err
		}
		s.log.Info().Str("user_id", actor.ID).Str("unfollowed_id", target.ID).Msg("user unfollowed")
	}

	target.IsFollowed = false
	confirm(flag, false)
	profile := profileOf(target)
	return &profile, nil
}

// followPair loads the acting and target users and checks the operation's
// exposure. A user may never follow themselves.
func (s *UserService) followPair(ctx context.Context, actorID, username, operation string) (*domain.User, *domain.User, error) {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	res := newResolution(s.roles, s.users, actorID, actor)
	if err := s.policy.CheckAccess(ctx, res, "User", operation, access.OpCall); err != nil {
		return nil, nil, err
	}
	target, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	if target.ID == actor.ID {
		return nil, nil, &domain.ValidationError{Field: "username", Message: "You cannot follow yourself."}
	}
	return actor, target, nil
}

// Favorite adds the article to the acting user's favorites and bumps the
// article's derived counter with an atomic increment. Idempotent. The
// relation-set write and the counter write are separate documents: a failure
// between them leaves the relation committed and the counter stale, surfaced
// to the caller as an error.
func (s *UserService) Favorite(ctx context.Context, actorID, slug string, flag *ports.OptimisticFlag) (*ports.ArticleView, error) {
	actor, article, err := s.favoritePair(ctx, actorID, slug, "favorite")
	if err != nil {
		revert(flag)
		return nil, err
	}

	if actor.HasFavorited(article.ID) {
		return s.settledView(ctx, article, actor, flag, true)
	}

	actor.FavoritedArticleIDs = append(actor.FavoritedArticleIDs, article.ID)
	actor.UpdatedAt = time.Now().UTC()
	if err := s.users.Save(ctx, actor); err != nil {
		revert(flag)
		return nil, err
	}

	if err := s.articles.IncrementFavoritesCount(ctx, article.ID, 1); err != nil {
		revert(flag)
		s.log.Error().Err(err).
			Str("user_id", actor.ID).
			Str("article_id", article.ID).
			Msg("favorites count increment failed after relation write")
		return nil, err
	}
	article.FavoritesCount++

	s.log.Info().Str("user_id", actor.ID).Str("article_id", article.ID).Msg("article favorited")
	return s.settledView(ctx, article, actor, flag, true)
}

// Unfavorite is the mirror of Favorite. The decrement is unconditional: the
// idempotency guard guarantees it pairs with a prior increment.
func (s *UserService) Unfavorite(ctx context.Context, actorID, slug string, flag *ports.OptimisticFlag) (*ports.ArticleView, error) {
	actor, article, err := s.favoritePair(ctx, actorID, slug, "unfavorite")
	if err != nil {
		revert(flag)
		return nil, err
	}

	if !actor.HasFavorited(article.ID) {
		return s.settledView(ctx, article, actor, flag, false)
	}

	actor.FavoritedArticleIDs = domain.RemoveID(actor.FavoritedArticleIDs, article.ID)
	actor.UpdatedAt = time.Now().UTC()
	if err := s.users.Save(ctx, actor); err != nil {
		revert(flag)
		return nil, err
	}

	if err := s.articles.IncrementFavoritesCount(ctx, article.ID, -1); err != nil {
		revert(flag)
		s.log.Error().Err(err).
			Str("user_id", actor.ID).
			Str("article_id", article.ID).
			Msg("favorites count decrement failed after relation write")
		return nil, err
	}
	article.FavoritesCount--

	s.log.Info().Str("user_id", actor.ID).Str("article_id", article.ID).Msg("article unfavorited")
	return s.settledView(ctx, article, actor, flag, false)
}

func (s *UserService) favoritePair(ctx context.Context, actorID, slug, operation string) (*domain.User, *domain.Article, error) {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	res := newResolution(s.roles, s.users, actorID, actor)
	if err := s.policy.CheckAccess(ctx, res, "User", operation, access.OpCall); err != nil {
		return nil, nil, err
	}
	article, err := s.articles.FindBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	return actor, article, nil
}

func (s *UserService) settledView(ctx context.Context, article *domain.Article, actor *domain.User, flag *ports.OptimisticFlag, favorited bool) (*ports.ArticleView, error) {
	confirm(flag, favorited)
	author, err := loadActor(ctx, s.users, article.AuthorID)
	if err != nil {
		return nil, err
	}
	view := articleView(article, author, actor)
	view.IsFavorited = favorited
	return &view, nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email, ownID string) error {
	existing, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != ownID {
		return &domain.ConflictError{Field: "email", Message: "This email address is already registered."}
	}
	return nil
}

func (s *UserService) ensureUsernameFree(ctx context.Context, username, ownID string) error {
	existing, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != ownID {
		return &domain.ConflictError{Field: "username", Message: "This username is already taken."}
	}
	return nil
}
