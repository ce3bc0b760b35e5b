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

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// TagCache caches the distinct-tag scan. Get returns a nil slice on miss.
type TagCache interface {
	Get(ctx context.Context) ([]string, error)
	Set(ctx context.Context, tags []string) error
}

// ArticleService implements article lifecycle, listing, and tag discovery.
type ArticleService struct {
	articles ports.ArticleRepository
	users    ports.UserRepository
	comments ports.CommentRepository
	tags     TagCache
	roles    *access.Registry
	policy   *access.Policy
	log      zerolog.Logger
}

func NewArticleService(
	articles ports.ArticleRepository,
	users ports.UserRepository,
	comments ports.CommentRepository,
	tags TagCache,
	roles *access.Registry,
	policy *access.Policy,
	log zerolog.Logger,
) *ArticleService {
	return &ArticleService{
		articles: articles,
		users:    users,
		comments: comments,
		tags:     tags,
		roles:    roles,
		policy:   policy,
		log:      log,
	}
}

// Create publishes a new article authored by the acting user. The slug is
// derived from the title once, at creation, and never changes.
func (s *ArticleService) Create(ctx context.Context, actorID string, in ports.CreateArticleInput) (*ports.ArticleView, error) {
	article := &domain.Article{
		Title:       in.Title,
		Description: in.Description,
		Body:        in.Body,
		Tags:        in.Tags,
	}
	res := newResolution(s.roles, s.users, actorID, article)
	if err := s.policy.CheckAccess(ctx, res, "Article", "save", access.OpCall); err != nil {
		return nil, err
	}
	for _, member := range []string{"title", "description", "body", "tags"} {
		if err := s.policy.CheckAccess(ctx, res, "Article", member, access.OpSet); err != nil {
			return nil, err
		}
	}

	if err := article.Validate(); err != nil {
		return nil, err
	}
	article.AuthorID = actorID
	article.Slug = domain.NewSlug(article.Title)
	if err := s.ensureSlugFree(ctx, article.Slug, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	article.CreatedAt = now
	article.UpdatedAt = now
	if err := s.articles.Save(ctx, article); err != nil {
		return nil, err
	}

	s.log.Info().Str("article_id", article.ID).Str("slug", article.Slug).Str("author_id", actorID).Msg("article created")
	return s.view(ctx, article, actorID)
}

// Get returns one article with flags derived for the acting user.
func (s *ArticleService) Get(ctx context.Context, slug, actorID string) (*ports.ArticleView, error) {
	article, err := s.articles.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, article, actorID)
}

// List returns a page of the global article list, newest first.
func (s *ArticleService) List(ctx context.Context, in ports.ListArticlesInput) (*ports.ArticleList, error) {
	filter := ports.ArticleFilter{
		Tag:   in.Tag,
		Skip:  in.Skip,
		Limit: clampLimit(in.Limit),
	}

	if in.Author != "" {
		author, err := s.users.FindByUsername(ctx, in.Author)
		if errors.Is(err, domain.ErrNotFound) {
			return &ports.ArticleList{}, nil
		}
		if err != nil {
			return nil, err
		}
		filter.AuthorIDs = []string{author.ID}
	}

	if in.FavoritedBy != "" {
		favoriter, err := s.users.FindByUsername(ctx, in.FavoritedBy)
		if errors.Is(err, domain.ErrNotFound) {
			return &ports.ArticleList{}, nil
		}
		if err != nil {
			return nil, err
		}
		if len(favoriter.FavoritedArticleIDs) == 0 {
			return &ports.ArticleList{}, nil
		}
		filter.IDs = favoriter.FavoritedArticleIDs
	}

	return s.page(ctx, filter, in.ActorID)
}

// Feed returns articles authored by users the acting user follows.
func (s *ArticleService) Feed(ctx context.Context, actorID string, skip, limit int) (*ports.ArticleList, error) {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if len(actor.FollowedUserIDs) == 0 {
		return &ports.ArticleList{}, nil
	}
	filter := ports.ArticleFilter{
		AuthorIDs: actor.FollowedUserIDs,
		Skip:      skip,
		Limit:     clampLimit(limit),
	}
	return s.page(ctx, filter, actorID)
}

// Update applies the provided fields to an existing article. Only the author
// may save a persisted article; the slug is stable.
func (s *ArticleService) Update(ctx context.Context, actorID, slug string, in ports.UpdateArticleInput) (*ports.ArticleView, error) {
	article, err := s.articles.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	res := newResolution(s.roles, s.users, actorID, article)
	if err := s.policy.CheckAccess(ctx, res, "Article", "save", access.OpCall); err != nil {
		return nil, err
	}

	if in.Title != nil {
		if err := s.policy.CheckAccess(ctx, res, "Article", "title", access.OpSet); err != nil {
			return nil, err
		}
		article.Title = *in.Title
	}
	if in.Description != nil {
		if err := s.policy.CheckAccess(ctx, res, "Article", "description", access.OpSet); err != nil {
			return nil, err
		}
		article.Description = *in.Description
	}
	if in.Body != nil {
		if err := s.policy.CheckAccess(ctx, res, "Article", "body", access.OpSet); err != nil {
			return nil, err
		}
		article.Body = *in.Body
	}
	if in.Tags != nil {
		if err := s.policy.CheckAccess(ctx, res, "Article", "tags", access.OpSet); err != nil {
			return nil, err
		}
		article.Tags = *in.Tags
	}

	if err := article.Validate(); err != nil {
		return nil, err
	}
	article.UpdatedAt = time.Now().UTC()
	if err := s.articles.Save(ctx, article); err != nil {
		return nil, err
	}

	s.log.Info().Str("article_id", article.ID).Str("slug", article.Slug).Msg("article updated")
	return s.view(ctx, article, actorID)
}

// Delete removes an article and cascades: comments referencing it are
// deleted and the article is pulled from every user's favorites.
func (s *ArticleService) Delete(ctx context.Context, actorID, slug string) error {
	article, err := s.articles.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}
	res := newResolution(s.roles, s.users, actorID, article)
	if err := s.policy.CheckAccess(ctx, res, "Article", "delete", access.OpCall); err != nil {
		return err
	}

	if err := s.comments.DeleteByArticle(ctx, article.ID); err != nil {
		return err
	}
	if err := s.users.RemoveFavoriteFromAll(ctx, article.ID); err != nil {
		return err
	}
	if err := s.articles.Delete(ctx, article.ID); err != nil {
		return err
	}

	s.log.Info().Str("article_id", article.ID).Str("slug", article.Slug).Msg("article deleted with cascade")
	return nil
}

// PopularTags returns every tag in use. The distinct scan is cached when a
// tag cache is configured; cache failures degrade to the scan.
func (s *ArticleService) PopularTags(ctx context.Context) ([]string, error) {
	if s.tags != nil {
		cached, err := s.tags.Get(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("tag cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	tags, err := s.articles.DistinctTags(ctx)
	if err != nil {
		return nil, err
	}
	if s.tags != nil {
		if err := s.tags.Set(ctx, tags); err != nil {
			s.log.Warn().Err(err).Msg("tag cache write failed")
		}
	}
	return tags, nil
}

func (s *ArticleService) ensureSlugFree(ctx context.Context, slug, ownID string) error {
	existing, err := s.articles.FindBySlug(ctx, slug)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != ownID {
		return &domain.ConflictError{Field: "slug", Message: "This title produced a slug that is already taken."}
	}
	return nil
}

func (s *ArticleService) view(ctx context.Context, article *domain.Article, actorID string) (*ports.ArticleView, error) {
	actor, err := loadActor(ctx, s.users, actorID)
	if err != nil {
		return nil, err
	}
	author, err := loadActor(ctx, s.users, article.AuthorID)
	if err != nil {
		return nil, err
	}
	view := articleView(article, author, actor)
	return &view, nil
}

// page lists articles for a filter and assembles views, loading each author
// once.
func (s *ArticleService) page(ctx context.Context, filter ports.ArticleFilter, actorID string) (*ports.ArticleList, error) {
	items, total, err := s.articles.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	actor, err := loadActor(ctx, s.users, actorID)
	if err != nil {
		return nil, err
	}

	authors := make(map[string]*domain.User, len(items))
	views := make([]ports.ArticleView, 0, len(items))
	for _, article := range items {
		author, ok := authors[article.AuthorID]
		if !ok {
			author, err = loadActor(ctx, s.users, article.AuthorID)
			if err != nil {
				return nil, err
			}
			authors[article.AuthorID] = author
		}
		views = append(views, articleView(article, author, actor))
	}
	return &ports.ArticleList{Items: views, Total: total}, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}
