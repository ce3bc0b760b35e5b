package service

import (
	"context"
	"errors"

	"github.com/conduit-labs/publishing-api/internal/core/access"
	"github.com/conduit-labs/publishing-api/internal/core/domain"
	"github.com/conduit-labs/publishing-api/internal/core/ports"
)

// repoLookup adapts a UserRepository to the role engine's existence check.
type repoLookup struct {
	users ports.UserRepository
}

func (l repoLookup) UserExists(ctx context.Context, id string) (bool, error) {
	return l.users.Exists(ctx, id)
}

func newResolution(roles *access.Registry, users ports.UserRepository, actorID string, target access.Target) *access.Resolution {
	return roles.NewResolution(actorID, target, repoLookup{users: users})
}

func profileOf(user *domain.User) ports.Profile {
	return ports.Profile{
		Username:   user.Username,
		Bio:        user.Bio,
		ImageURL:   user.ImageURL,
		IsFollowed: user.IsFollowed,
	}
}

// loadActor fetches the acting user when an actor id is present. A missing
// actor is not an error: the caller simply gets no derived flags.
func loadActor(ctx context.Context, users ports.UserRepository, actorID string) (*domain.User, error) {
	if actorID == "" {
		return nil, nil
	}
	actor, err := users.GetByID(ctx, actorID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return actor, nil
}

// articleView assembles the caller-facing article representation, deriving
// the favorited and following flags relative to the acting user.
func articleView(article *domain.Article, author *domain.User, actor *domain.User) ports.ArticleView {
	view := ports.ArticleView{
		Slug:           article.Slug,
		Title:          article.Title,
		Description:    article.Description,
		Body:           article.Body,
		Tags:           article.Tags,
		CreatedAt:      article.CreatedAt,
		UpdatedAt:      article.UpdatedAt,
		FavoritesCount: article.FavoritesCount,
	}
	if actor != nil {
		view.IsFavorited = actor.HasFavorited(article.ID)
	}
	if author != nil {
		authorProfile := profileOf(author)
		if actor != nil {
			authorProfile.IsFollowed = actor.IsFollowing(author.ID)
		}
		view.Author = authorProfile
	}
	return view
}
