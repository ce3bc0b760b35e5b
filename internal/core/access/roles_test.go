package access

import (
	"context"
	"testing"
)

type staticLookup map[string]bool

func (l staticLookup) UserExists(_ context.Context, id string) (bool, error) {
	return l[id], nil
}

type testUser struct {
	id string
}

func (u *testUser) EntityID() string { return u.id }
func (u *testUser) IsNew() bool      { return u.id == "" }

type testArticle struct {
	id       string
	authorID string
}

func (a *testArticle) EntityID() string   { return a.id }
func (a *testArticle) IsNew() bool        { return a.id == "" }
func (a *testArticle) AuthoredBy() string { return a.authorID }

func TestResolveUser_RequiresExistingSubject(t *testing.T) {
	reg := NewRegistry()
	ctx := context.Background()

	// Verified token, but the subject was deleted after issuance.
	r := reg.NewResolution("u1", &testUser{id: "u2"}, staticLookup{})
	d, err := r.Resolve(ctx, RoleUser)
	if err != nil {
		t.Fatalf("resolve user: %v", err)
	}
	if d != False {
		t.Fatalf("expected user=false for deleted subject, got %s", d)
	}
	if ok, _ := r.Holds(ctx, RoleGuest); !ok {
		t.Fatalf("expected guest to hold when user does not")
	}

	r = reg.NewResolution("u1", &testUser{id: "u2"}, staticLookup{"u1": true})
	if ok, _ := r.Holds(ctx, RoleUser); !ok {
		t.Fatalf("expected user to hold for existing subject")
	}
	if ok, _ := r.Holds(ctx, RoleGuest); ok {
		t.Fatalf("expected guest not to hold for authenticated actor")
	}
}

func TestResolveSelf(t *testing.T) {
	reg := NewRegistry()
	ctx := context.Background()
	lookup := staticLookup{"u1": true}

	r := reg.NewResolution("u1", &testUser{id: "u1"}, lookup)
	if ok, _ := r.Holds(ctx, RoleSelf); !ok {
		t.Fatalf("expected self to hold for own account")
	}

	r = reg.NewResolution("u1", &testUser{id: "u2"}, lookup)
	if ok, _ := r.Holds(ctx, RoleSelf); ok {
		t.Fatalf("expected self not to hold for another account")
	}

	// Guest: self is not applicable, resolves indeterminate.
	r = reg.NewResolution("", &testUser{id: "u1"}, staticLookup{})
	d, err := r.Resolve(ctx, RoleSelf)
	if err != nil {
		t.Fatalf("resolve self: %v", err)
	}
	if d != Indeterminate {
		t.Fatalf("expected indeterminate self for guest, got %s", d)
	}

	// Creator: the target is not persisted, there is no self yet.
	r = reg.NewResolution("u1", &testUser{}, lookup)
	d, _ = r.Resolve(ctx, RoleSelf)
	if d != Indeterminate {
		t.Fatalf("expected indeterminate self for unsaved target, got %s", d)
	}
}

func TestResolveCreator(t *testing.T) {
	reg := NewRegistry()
	ctx := context.Background()

	r := reg.NewResolution("", &testArticle{}, staticLookup{})
	if ok, _ := r.Holds(ctx, RoleCreator); !ok {
		t.Fatalf("expected creator to hold for unsaved target")
	}

	r = reg.NewResolution("u1", &testArticle{id: "a1", authorID: "u1"}, staticLookup{"u1": true})
	if ok, _ := r.Holds(ctx, RoleCreator); ok {
		t.Fatalf("expected creator not to hold for persisted target")
	}
}

func TestResolveAuthor(t *testing.T) {
	reg := NewRegistry()
	ctx := context.Background()
	lookup := staticLookup{"u1": true}

	r := reg.NewResolution("u1", &testArticle{id: "a1", authorID: "u1"}, lookup)
	if ok, _ := r.Holds(ctx, RoleAuthor); !ok {
		t.Fatalf("expected author to hold for owner")
	}

	r = reg.NewResolution("u1", &testArticle{id: "a1", authorID: "u2"}, lookup)
	if ok, _ := r.Holds(ctx, RoleAuthor); ok {
		t.Fatalf("expected author not to hold for non-owner")
	}

	// An unsaved target is provisionally authored by whoever is creating it.
	r = reg.NewResolution("u1", &testArticle{}, lookup)
	if ok, _ := r.Holds(ctx, RoleAuthor); !ok {
		t.Fatalf("expected author to hold for unsaved target")
	}

	r = reg.NewResolution("", &testArticle{id: "a1", authorID: "u1"}, staticLookup{})
	d, _ := r.Resolve(ctx, RoleAuthor)
	if d != Indeterminate {
		t.Fatalf("expected indeterminate author for guest, got %s", d)
	}
}

func TestResolutionMemoization(t *testing.T) {
	reg := NewRegistry()
	ctx := context.Background()

	calls := 0
	reg.Register("premium", func(ctx context.Context, r *Resolution) (Decision, error) {
		calls++
		return True, nil
	})

	r := reg.NewResolution("u1", &testUser{id: "u1"}, staticLookup{"u1": true})
	for i := 0; i < 3; i++ {
		if ok, err := r.Holds(ctx, "premium"); err != nil || !ok {
			t.Fatalf("resolve premium: ok=%v err=%v", ok, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one resolver invocation, got %d", calls)
	}

	// Indeterminate results are recomputed on every query.
	indeterminateCalls := 0
	reg.Register("maybe", func(ctx context.Context, r *Resolution) (Decision, error) {
		indeterminateCalls++
		return Indeterminate, nil
	})
	for i := 0; i < 2; i++ {
		if _, err := r.Resolve(ctx, "maybe"); err != nil {
			t.Fatalf("resolve maybe: %v", err)
		}
	}
	if indeterminateCalls != 2 {
		t.Fatalf("expected indeterminate resolver to run twice, got %d", indeterminateCalls)
	}
}

func TestResolveUnknownRole(t *testing.T) {
	reg := NewRegistry()
	r := reg.NewResolution("u1", &testUser{id: "u1"}, staticLookup{"u1": true})
	if _, err := r.Resolve(context.Background(), "nonexistent"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}
