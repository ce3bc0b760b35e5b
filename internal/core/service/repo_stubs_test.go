package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/conduit-labs/publishing-api/internal/core/access"
	"github.com/conduit-labs/publishing-api/internal/core/domain"
	"github.com/conduit-labs/publishing-api/internal/core/ports"
)

// The mem stubs mirror the store's value isolation: every read decodes into a
// fresh value, so mutating what a lookup returned never changes the stored
// document until Save.
func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.FavoritedArticleIDs = append([]string(nil), u.FavoritedArticleIDs...)
	c.FollowedUserIDs = append([]string(nil), u.FollowedUserIDs...)
	return &c
}

func cloneArticle(a *domain.Article) *domain.Article {
	c := *a
	c.Tags = append([]string(nil), a.Tags...)
	return &c
}

func cloneComment(c *domain.Comment) *domain.Comment {
	out := *c
	return &out
}

// memUserRepo is an in-memory UserRepository for service tests.
type memUserRepo struct {
	byID    map[string]*domain.User
	seq     int
	saveErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: make(map[string]*domain.User)}
}

func (r *memUserRepo) add(u *domain.User) *domain.User {
	if u.ID == "" {
		r.seq++
		u.ID = fmt.Sprintf("u%d", r.seq)
	}
	r.byID[u.ID] = u
	return u
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) Save(_ context.Context, user *domain.User) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	if user.ID == "" {
		r.seq++
		user.ID = fmt.Sprintf("u%d", r.seq)
	}
	r.byID[user.ID] = cloneUser(user)
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *memUserRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := r.byID[id]
	return ok, nil
}

func (r *memUserRepo) RemoveFavoriteFromAll(_ context.Context, articleID string) error {
	for _, u := range r.byID {
		u.FavoritedArticleIDs = domain.RemoveID(u.FavoritedArticleIDs, articleID)
	}
	return nil
}

// memArticleRepo is an in-memory ArticleRepository for service tests.
type memArticleRepo struct {
	byID   map[string]*domain.Article
	seq    int
	incErr error
}

func newMemArticleRepo() *memArticleRepo {
	return &memArticleRepo{byID: make(map[string]*domain.Article)}
}

func (r *memArticleRepo) add(a *domain.Article) *domain.Article {
	if a.ID == "" {
		r.seq++
		a.ID = fmt.Sprintf("a%d", r.seq)
	}
	r.byID[a.ID] = a
	return a
}

func (r *memArticleRepo) GetByID(_ context.Context, id string) (*domain.Article, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneArticle(a), nil
}

func (r *memArticleRepo) FindBySlug(_ context.Context, slug string) (*domain.Article, error) {
	for _, a := range r.byID {
		if a.Slug == slug {
			return cloneArticle(a), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memArticleRepo) Save(_ context.Context, article *domain.Article) error {
	if article.ID == "" {
		r.seq++
		article.ID = fmt.Sprintf("a%d", r.seq)
	}
	r.byID[article.ID] = cloneArticle(article)
	return nil
}

func (r *memArticleRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *memArticleRepo) IncrementFavoritesCount(_ context.Context, id string, delta int) error {
	if r.incErr != nil {
		return r.incErr
	}
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.FavoritesCount += delta
	return nil
}

func (r *memArticleRepo) List(_ context.Context, filter ports.ArticleFilter) ([]*domain.Article, int64, error) {
	var matched []*domain.Article
	for _, a := range r.byID {
		if filter.Tag != "" && !containsString(a.Tags, filter.Tag) {
			continue
		}
		if len(filter.AuthorIDs) > 0 && !containsString(filter.AuthorIDs, a.AuthorID) {
			continue
		}
		if len(filter.IDs) > 0 && !containsString(filter.IDs, a.ID) {
			continue
		}
		matched = append(matched, cloneArticle(a))
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if filter.Skip >= len(matched) {
		return nil, total, nil
	}
	matched = matched[filter.Skip:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (r *memArticleRepo) DistinctTags(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var tags []string
	for _, a := range r.byID {
		for _, tag := range a.Tags {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	sort.Strings(tags)
	return tags, nil
}

// memCommentRepo is an in-memory CommentRepository for service tests.
type memCommentRepo struct {
	byID map[string]*domain.Comment
	seq  int
}

func newMemCommentRepo() *memCommentRepo {
	return &memCommentRepo{byID: make(map[string]*domain.Comment)}
}

func (r *memCommentRepo) GetByID(_ context.Context, id string) (*domain.Comment, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneComment(c), nil
}

func (r *memCommentRepo) Save(_ context.Context, comment *domain.Comment) error {
	if comment.ID == "" {
		r.seq++
		comment.ID = fmt.Sprintf("c%d", r.seq)
	}
	r.byID[comment.ID] = cloneComment(comment)
	return nil
}

func (r *memCommentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *memCommentRepo) ListByArticle(_ context.Context, articleID string) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	for _, c := range r.byID {
		if c.ArticleID == articleID {
			comments = append(comments, cloneComment(c))
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID < comments[j].ID
		}
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (r *memCommentRepo) DeleteByArticle(_ context.Context, articleID string) error {
	for id, c := range r.byID {
		if c.ArticleID == articleID {
			delete(r.byID, id)
		}
	}
	return nil
}

// memTagCache records cache traffic for tag tests.
type memTagCache struct {
	tags    []string
	getErr  error
	sets    int
	setTags []string
}

func (c *memTagCache) Get(_ context.Context) ([]string, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.tags, nil
}

func (c *memTagCache) Set(_ context.Context, tags []string) error {
	c.sets++
	c.setTags = tags
	return nil
}

func containsString(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

// fixture bundles the repositories and fully wired services used by the
// service tests.
type fixture struct {
	users    *memUserRepo
	articles *memArticleRepo
	comments *memCommentRepo

	userService    *UserService
	articleService *ArticleService
	commentService *CommentService
}

func newFixture() *fixture {
	users := newMemUserRepo()
	articles := newMemArticleRepo()
	comments := newMemCommentRepo()

	roles := access.NewRegistry()
	policy := access.DefaultPolicy()
	tokens := NewTokenService("test-secret", time.Hour)
	log := zerolog.Nop()

	return &fixture{
		users:          users,
		articles:       articles,
		comments:       comments,
		userService:    NewUserService(users, articles, tokens, roles, policy, log),
		articleService: NewArticleService(articles, users, comments, nil, roles, policy, log),
		commentService: NewCommentService(comments, articles, users, roles, policy, log),
	}
}

func (f *fixture) seedUser(username, email string) *domain.User {
	hash, err := HashPassword("password123")
	if err != nil {
		panic(err)
	}
	return f.users.add(&domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	})
}

func (f *fixture) seedArticle(author *domain.User, title string) *domain.Article {
	return f.articles.add(&domain.Article{
		AuthorID:    author.ID,
		Title:       title,
		Description: "a description",
		Body:        "a body",
		Slug:        domain.NewSlug(title),
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	})
}
