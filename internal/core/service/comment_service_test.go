package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/conduit-labs/publishing-api/internal/core/domain"
)

func TestAddComment(t *testing.T) {
	f := newFixture()
	alice := f.seedUser("alice", "alice@example.com")
	bob := f.seedUser("bob", "bob@example.com")
	article := f.seedArticle(alice, "Commented Post")

	view, err := f.commentService.Add(context.Background(), bob.ID, article.Slug, "great read")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if view.ID == "" {
		t.Fatalf("expected assigned comment id")
	}
	if view.Body != "great read" {
		t.Fatalf("unexpected body %q", view.Body)
	}
	if view.Author.Username != "bob" {
		t.Fatalf("expected author bob, got %q", view.Author.Username)
	}
}

func TestAddComment_Invalid(t *testing.T) {
	f := newFixture()
	alice := f.seedUser("alice", "alice@example.com")
	article := f.seedArticle(alice, "Commented Post")

	_, err := f.commentService.Add(context.Background(), alice.ID, article.Slug, "")
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error for empty body, got %v", err)
	}

	if _, err := f.commentService.Add(context.Background(), alice.ID, "no-such-slug", "hello"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for unknown article, got %v", err)
	}
}

func TestListComments(t *testing.T) {
	f := newFixture()
	alice := f.seedUser("alice", "alice@example.com")
	bob := f.seedUser("bob", "bob@example.com")
	article := f.seedArticle(alice, "Commented Post")
	ctx := context.Background()

	f.comments.Save(ctx, &domain.Comment{
		ArticleID: article.ID,
		AuthorID:  bob.ID,
		Body:      "first",
		CreatedAt: time.Now().UTC().Add(-time.Minute),
	})
	f.comments.Save(ctx, &domain.Comment{
		ArticleID: article.ID,
		AuthorID:  alice.ID,
		Body:      "second",
		CreatedAt: time.Now().UTC(),
	})

	views, err := f.commentService.List(ctx, article.Slug, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(views))
	}
	// Creation order, oldest first.
	if views[0].Body != "first" || views[1].Body != "second" {
		t.Fatalf("unexpected order: %q, %q", views[0].Body, views[1].Body)
	}
	if views[0].Author.Username != "bob" {
		t.Fatalf("expected author bob, got %q", views[0].Author.Username)
	}
}

func TestDeleteComment(t *testing.T) {
	f := newFixture()
	alice := f.seedUser("alice", "alice@example.com")
	bob := f.seedUser("bob", "bob@example.com")
	article := f.seedArticle(alice, "Commented Post")
	ctx := context.Background()

	view, err := f.commentService.Add(ctx, bob.ID, article.Slug, "my comment")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	// Only the comment's author may delete it, not the article's author.
	if err := f.commentService.Delete(ctx, alice.ID, article.Slug, view.ID); !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("expected access denied for non-author, got %v", err)
	}

	if err := f.commentService.Delete(ctx, bob.ID, article.Slug, view.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.comments.GetByID(ctx, view.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("comment not deleted")
	}
}

func TestDeleteComment_WrongArticle(t *testing.T) {
	f := newFixture()
	alice := f.seedUser("alice", "alice@example.com")
	first := f.seedArticle(alice, "First Post")
	second := f.seedArticle(alice, "Second Post")
	ctx := context.Background()

	view, err := f.commentService.Add(ctx, alice.ID, first.Slug, "on the first post")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	// Addressing the comment through another article's slug must not match.
	if err := f.commentService.Delete(ctx, alice.ID, second.Slug, view.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
