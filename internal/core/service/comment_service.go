package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/conduit-labs/publishing-api/internal/core/access"
	"github.com/conduit-labs/publishing-api/internal/core/domain"
	"github.com/conduit-labs/publishing-api/internal/core/ports"
)

// CommentService implements commenting on articles.
type CommentService struct {
	comments ports.CommentRepository
	articles ports.ArticleRepository
	users    ports.UserRepository
	roles    *access.Registry
	policy   *access.Policy
	log      zerolog.Logger
}

func NewCommentService(
	comments ports.CommentRepository,
	articles ports.ArticleRepository,
	users ports.UserRepository,
	roles *access.Registry,
	policy *access.Policy,
	log zerolog.Logger,
) *CommentService {
	return &CommentService{
		comments: comments,
		articles: articles,
		users:    users,
		roles:    roles,
		policy:   policy,
		log:      log,
	}
}

// Add attaches a new comment by the acting user to the article.
func (s *CommentService) Add(ctx context.Context, actorID, slug, body string) (*ports.CommentView, error) {
	article, err := s.articles.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{ArticleID: article.ID, Body: body}
	res := newResolution(s.roles, s.users, actorID, comment)
	if err := s.policy.CheckAccess(ctx, res, "Comment", "save", access.OpCall); err != nil {
		return nil, err
	}
	if err := s.policy.CheckAccess(ctx, res, "Comment", "body", access.OpSet); err != nil {
		return nil, err
	}

	if err := comment.Validate(); err != nil {
		return nil, err
	}
	comment.AuthorID = actorID
	comment.CreatedAt = time.Now().UTC()
	if err := s.comments.Save(ctx, comment); err != nil {
		return nil, err
	}

	s.log.Info().Str("comment_id", comment.ID).Str("article_id", article.ID).Msg("comment added")
	return s.view(ctx, comment, actorID)
}

// List returns the article's comments in creation order.
func (s *CommentService) List(ctx context.Context, slug, actorID string) ([]ports.CommentView, error) {
	article, err := s.articles.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByArticle(ctx, article.ID)
	if err != nil {
		return nil, err
	}

	actor, err := loadActor(ctx, s.users, actorID)
	if err != nil {
		return nil, err
	}
	authors := make(map[string]*domain.User, len(comments))
	views := make([]ports.CommentView, 0, len(comments))
	for _, comment := range comments {
		author, ok := authors[comment.AuthorID]
		if !ok {
			author, err = loadActor(ctx, s.users, comment.AuthorID)
			if err != nil {
				return nil, err
			}
			authors[comment.AuthorID] = author
		}
		views = append(views, commentView(comment, author, actor))
	}
	return views, nil
}

// Delete removes a comment; only its author may.
func (s *CommentService) Delete(ctx context.Context, actorID, slug, commentID string) error {
	article, err := s.articles.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.ArticleID != article.ID {
		return domain.ErrNotFound
	}

	res := newResolution(s.roles, s.users, actorID, comment)
	if err := s.policy.CheckAccess(ctx, res, "Comment", "delete", access.OpCall); err != nil {
		return err
	}

	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return err
	}
	s.log.Info().Str("comment_id", comment.ID).Str("article_id", article.ID).Msg("comment deleted")
	return nil
}

func (s *CommentService) view(ctx context.Context, comment *domain.Comment, actorID string) (*ports.CommentView, error) {
	actor, err := loadActor(ctx, s.users, actorID)
	if err != nil {
		return nil, err
	}
	author, err := loadActor(ctx, s.users, comment.AuthorID)
	if err != nil {
		return nil, err
	}
	view := commentView(comment, author, actor)
	return &view, nil
}

func commentView(comment *domain.Comment, author *domain.User, actor *domain.User) ports.CommentView {
	view := ports.CommentView{
		ID:        comment.ID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	}
	if author != nil {
		profile := profileOf(author)
		if actor != nil {
			profile.IsFollowed = actor.IsFollowing(author.ID)
		}
		view.Author = profile
	}
	return view
}
