package ports

import (
	"context"

	"github.com/conduit-labs/publishing-api/internal/core/domain"
)

// UserRepository defines persistence for users. Lookups return
// domain.ErrNotFound when no document matches; Save maps store-level unique
// index violations to domain.ConflictError.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// Save inserts the user when its id is empty (assigning one) and
	// replaces the stored document otherwise.
	Save(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	// RemoveFavoriteFromAll pulls an article id out of every user's
	// favorites. Used by the article delete cascade.
	RemoveFavoriteFromAll(ctx context.Context, articleID string) error
}

// ArticleFilter carries the query parameters for listing articles. Empty
// fields are not applied. IDs and AuthorIDs are OR-sets within themselves and
// AND-ed with the other fields.
type ArticleFilter struct {
	Tag       string
	AuthorIDs []string
	IDs       []string
	Skip      int
	Limit     int
}

// ArticleRepository defines persistence for articles.
type ArticleRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Article, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Article, error)
	Save(ctx context.Context, article *domain.Article) error
	Delete(ctx context.Context, id string) error
	// IncrementFavoritesCount applies an atomic delta to the derived
	// counter, avoiding the read-increment-write lost-update race.
	IncrementFavoritesCount(ctx context.Context, id string, delta int) error
	// List returns a page of articles matching filter, newest first, and the
	// total match count.
	List(ctx context.Context, filter ArticleFilter) ([]*domain.Article, int64, error)
	// DistinctTags returns every tag used by at least one article.
	DistinctTags(ctx context.Context) ([]string, error)
}

// CommentRepository defines persistence for comments.
type CommentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	Save(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id string) error
	// ListByArticle returns the article's comments in creation order.
	ListByArticle(ctx context.Context, articleID string) ([]*domain.Comment, error)
	// DeleteByArticle removes every comment referencing the article. Used by
	// the article delete cascade.
	DeleteByArticle(ctx context.Context, articleID string) error
}
