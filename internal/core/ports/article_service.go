package ports

import (
	"context"
	"time"
)

// ArticleView is the full article representation returned to callers.
// IsFavorited and the author's IsFollowed are derived relative to the acting
// user.
type ArticleView struct {
	Slug           string
	Title          string
	Description    string
	Body           string
	Tags           []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	FavoritesCount int
	IsFavorited    bool
	Author         Profile
}

// CreateArticleInput carries the attributes settable at creation.
type CreateArticleInput struct {
	Title       string
	Description string
	Body        string
	Tags        []string
}

// UpdateArticleInput updates an existing article. Nil fields are left
// untouched; the slug never changes after creation.
type UpdateArticleInput struct {
	Title       *string
	Description *string
	Body        *string
	Tags        *[]string
}

// ListArticlesInput filters the global article list. Author and FavoritedBy
// are usernames; an unknown username yields an empty result, not an error.
type ListArticlesInput struct {
	Tag         string
	Author      string
	FavoritedBy string
	Skip        int
	Limit       int
	ActorID     string
}

// ArticleList is a page of articles plus the total match count.
type ArticleList struct {
	Items []ArticleView
	Total int64
}

// ArticleService implements article lifecycle, listing, and tag discovery.
type ArticleService interface {
	Create(ctx context.Context, actorID string, in CreateArticleInput) (*ArticleView, error)
	Get(ctx context.Context, slug, actorID string) (*ArticleView, error)
	List(ctx context.Context, in ListArticlesInput) (*ArticleList, error)
	// Feed lists articles authored by users the acting user follows.
	Feed(ctx context.Context, actorID string, skip, limit int) (*ArticleList, error)
	Update(ctx context.Context, actorID, slug string, in UpdateArticleInput) (*ArticleView, error)
	// Delete cascades: comments referencing the article are removed and the
	// article is pulled from every user's favorites.
	Delete(ctx context.Context, actorID, slug string) error
	PopularTags(ctx context.Context) ([]string, error)
}

// CommentView is a comment with its author's public profile.
type CommentView struct {
	ID        string
	Body      string
	CreatedAt time.Time
	Author    Profile
}

// CommentService implements commenting on articles.
type CommentService interface {
	Add(ctx context.Context, actorID, slug, body string) (*CommentView, error)
	List(ctx context.Context, slug, actorID string) ([]CommentView, error)
	Delete(ctx context.Context, actorID, slug, commentID string) error
}
