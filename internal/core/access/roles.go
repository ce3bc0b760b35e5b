// Package access implements the capability machinery gating every entity
// operation: a cascading, memoized role resolution engine and a declarative
// per-attribute exposure policy.
package access

import (
	"context"
	"fmt"
)

// Decision is the tri-state outcome of a role resolver. Indeterminate means
// the role is not applicable in the current context; it counts as a denial
// for access decisions but is not a hard negative.
type Decision int

const (
	False Decision = iota
	True
	Indeterminate
)

func (d Decision) String() string {
	switch d {
	case True:
		return "true"
	case Indeterminate:
		return "indeterminate"
	default:
		return "false"
	}
}

// Built-in role names. The resolver graph is a DAG: self and author consult
// guest and creator, never the reverse.
const (
	RoleAny     = "any"
	RoleUser    = "user"
	RoleGuest   = "guest"
	RoleCreator = "creator"
	RoleSelf    = "self"
	RoleAuthor  = "author"
)

// Target is the entity instance a role is resolved against.
type Target interface {
	EntityID() string
	IsNew() bool
}

// Authored is implemented by targets owned by a user (articles, comments).
type Authored interface {
	Target
	AuthoredBy() string
}

// UserLookup reports whether a user id still exists in the store. A verified
// token whose subject no longer exists resolves to no identity.
type UserLookup interface {
	UserExists(ctx context.Context, id string) (bool, error)
}

// Resolver computes one role for the resolution in progress. A resolver may
// query other roles through r.
type Resolver func(ctx context.Context, r *Resolution) (Decision, error)

// Registry holds the named role resolvers. Use NewRegistry; it installs the
// built-in roles, which callers may override or extend with Register.
type Registry struct {
	resolvers map[string]Resolver
}

func NewRegistry() *Registry {
	reg := &Registry{resolvers: make(map[string]Resolver)}
	reg.Register(RoleUser, resolveUser)
	reg.Register(RoleGuest, resolveGuest)
	reg.Register(RoleCreator, resolveCreator)
	reg.Register(RoleSelf, resolveSelf)
	reg.Register(RoleAuthor, resolveAuthor)
	return reg
}

// Register binds a resolver to a role name, replacing any previous binding.
func (g *Registry) Register(name string, resolver Resolver) {
	g.resolvers[name] = resolver
}

// NewResolution starts a per-request resolution against target. actorID is
// the verified acting identity, empty when unauthenticated.
func (g *Registry) NewResolution(actorID string, target Target, lookup UserLookup) *Resolution {
	return &Resolution{
		registry: g,
		actorID:  actorID,
		target:   target,
		lookup:   lookup,
		cache:    make(map[string]Decision),
	}
}

// Resolution carries the per-request role resolution state. Each role is
// computed at most once per resolution regardless of how many exposure
// checks consult it; Indeterminate results are not memoized.
type Resolution struct {
	registry *Registry
	actorID  string
	target   Target
	lookup   UserLookup
	cache    map[string]Decision
}

// ActorID returns the verified acting identity, empty when unauthenticated.
func (r *Resolution) ActorID() string { return r.actorID }

// Target returns the entity instance roles are resolved against.
func (r *Resolution) Target() Target { return r.target }

// Resolve evaluates a role by name, memoizing definite results.
func (r *Resolution) Resolve(ctx context.Context, role string) (Decision, error) {
	if d, ok := r.cache[role]; ok {
		return d, nil
	}
	resolver, ok := r.registry.resolvers[role]
	if !ok {
		return False, fmt.Errorf("access: unknown role %q", role)
	}
	d, err := resolver(ctx, r)
	if err != nil {
		return False, err
	}
	if d != Indeterminate {
		r.cache[role] = d
	}
	return d, nil
}

// Holds reports whether the role resolves True. Indeterminate counts as no.
func (r *Resolution) Holds(ctx context.Context, role string) (bool, error) {
	d, err := r.Resolve(ctx, role)
	if err != nil {
		return false, err
	}
	return d == True, nil
}

// user: the acting identity is verified and the referenced user still exists.
func resolveUser(ctx context.Context, r *Resolution) (Decision, error) {
	if r.actorID == "" || r.lookup == nil {
		return False, nil
	}
	exists, err := r.lookup.UserExists(ctx, r.actorID)
	if err != nil {
		return False, err
	}
	if !exists {
		return False, nil
	}
	return True, nil
}

// guest: the negation of user.
func resolveGuest(ctx context.Context, r *Resolution) (Decision, error) {
	d, err := r.Resolve(ctx, RoleUser)
	if err != nil {
		return False, err
	}
	if d == True {
		return False, nil
	}
	return True, nil
}

// creator: the target has not been persisted yet.
func resolveCreator(_ context.Context, r *Resolution) (Decision, error) {
	if r.target == nil {
		return False, nil
	}
	if r.target.IsNew() {
		return True, nil
	}
	return False, nil
}

// self: the acting user is the target user. Not applicable for creators or
// guests.
func resolveSelf(ctx context.Context, r *Resolution) (Decision, error) {
	if r.target == nil {
		return False, nil
	}
	creator, err := r.Resolve(ctx, RoleCreator)
	if err != nil {
		return False, err
	}
	if creator == True {
		return Indeterminate, nil
	}
	guest, err := r.Resolve(ctx, RoleGuest)
	if err != nil {
		return False, err
	}
	if guest == True {
		return Indeterminate, nil
	}
	if r.actorID == r.target.EntityID() {
		return True, nil
	}
	return False, nil
}

// author: the acting user owns the target. An unsaved target is provisionally
// authored by its creator. Not applicable for guests.
func resolveAuthor(ctx context.Context, r *Resolution) (Decision, error) {
	if r.target == nil {
		return False, nil
	}
	guest, err := r.Resolve(ctx, RoleGuest)
	if err != nil {
		return False, err
	}
	if guest == True {
		return Indeterminate, nil
	}
	if r.target.IsNew() {
		return True, nil
	}
	authored, ok := r.target.(Authored)
	if !ok {
		return False, nil
	}
	if authored.AuthoredBy() == r.actorID {
		return True, nil
	}
	return False, nil
}
