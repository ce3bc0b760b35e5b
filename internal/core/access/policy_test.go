package access

import (
	"context"
	"errors"
	"testing"

	"github.com/conduit-labs/publishing-api/internal/core/domain"
)

func TestCheckAccess_WildcardShortCircuits(t *testing.T) {
	reg := NewRegistry()
	p := NewPolicy().Allow("User", "username", OpGet, RoleAny)

	// No actor, no lookup: the wildcard must not resolve anything.
	r := reg.NewResolution("", &testUser{id: "u1"}, nil)
	if err := p.CheckAccess(context.Background(), r, "User", "username", OpGet); err != nil {
		t.Fatalf("expected wildcard to permit guests, got %v", err)
	}
}

func TestCheckAccess_UndeclaredMemberDenied(t *testing.T) {
	reg := NewRegistry()
	p := NewPolicy()

	r := reg.NewResolution("u1", &testUser{id: "u1"}, staticLookup{"u1": true})
	err := p.CheckAccess(context.Background(), r, "User", "passwordHash", OpGet)
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("expected access denied for undeclared member, got %v", err)
	}
}

func TestDefaultPolicy_EmailExposure(t *testing.T) {
	reg := NewRegistry()
	p := DefaultPolicy()
	ctx := context.Background()
	lookup := staticLookup{"u1": true, "u2": true}

	// Own email is readable.
	r := reg.NewResolution("u1", &testUser{id: "u1"}, lookup)
	if err := p.CheckAccess(ctx, r, "User", "email", OpGet); err != nil {
		t.Fatalf("expected self to read own email, got %v", err)
	}

	// Another user's email is not.
	r = reg.NewResolution("u2", &testUser{id: "u1"}, lookup)
	if !errors.Is(p.CheckAccess(ctx, r, "User", "email", OpGet), domain.ErrAccessDenied) {
		t.Fatalf("expected other user denied email read")
	}

	// Guests neither.
	r = reg.NewResolution("", &testUser{id: "u1"}, staticLookup{})
	if !errors.Is(p.CheckAccess(ctx, r, "User", "email", OpGet), domain.ErrAccessDenied) {
		t.Fatalf("expected guest denied email read")
	}
}

func TestDefaultPolicy_ArticleSave(t *testing.T) {
	reg := NewRegistry()
	p := DefaultPolicy()
	ctx := context.Background()
	lookup := staticLookup{"u1": true, "u2": true}

	// The author may save their persisted article.
	r := reg.NewResolution("u1", &testArticle{id: "a1", authorID: "u1"}, lookup)
	if err := p.CheckAccess(ctx, r, "Article", "save", OpCall); err != nil {
		t.Fatalf("expected author allowed to save, got %v", err)
	}

	// Any authenticated user may save a new article (creator).
	r = reg.NewResolution("u2", &testArticle{}, lookup)
	if err := p.CheckAccess(ctx, r, "Article", "save", OpCall); err != nil {
		t.Fatalf("expected creator allowed to save, got %v", err)
	}

	// A non-author may not save someone else's article.
	r = reg.NewResolution("u2", &testArticle{id: "a1", authorID: "u1"}, lookup)
	if !errors.Is(p.CheckAccess(ctx, r, "Article", "save", OpCall), domain.ErrAccessDenied) {
		t.Fatalf("expected non-author denied save")
	}

	// Deletion is author-only: a creator resolution does not qualify once
	// the article is persisted.
	r = reg.NewResolution("u2", &testArticle{id: "a1", authorID: "u1"}, lookup)
	if !errors.Is(p.CheckAccess(ctx, r, "Article", "delete", OpCall), domain.ErrAccessDenied) {
		t.Fatalf("expected non-author denied delete")
	}
}

func TestDefaultPolicy_BioSetSelfOnly(t *testing.T) {
	reg := NewRegistry()
	p := DefaultPolicy()
	ctx := context.Background()
	lookup := staticLookup{"u1": true, "u2": true}

	r := reg.NewResolution("u1", &testUser{id: "u1"}, lookup)
	if err := p.CheckAccess(ctx, r, "User", "bio", OpSet); err != nil {
		t.Fatalf("expected self allowed to set bio, got %v", err)
	}

	r = reg.NewResolution("u2", &testUser{id: "u1"}, lookup)
	if !errors.Is(p.CheckAccess(ctx, r, "User", "bio", OpSet), domain.ErrAccessDenied) {
		t.Fatalf("expected other user denied bio set")
	}
}
