package access

import (
	"context"

	"github.com/conduit-labs/publishing-api/internal/core/domain"
)

// Operation is the kind of access being requested on a member.
type Operation string

const (
	OpGet  Operation = "get"
	OpSet  Operation = "set"
	OpCall Operation = "call"
)

// Policy is a static, inspectable table mapping entity type × member ×
// operation to the ordered list of role names accepted for it. Members with
// no declared rule are denied.
type Policy struct {
	table map[string]map[Operation][]string
}

func NewPolicy() *Policy {
	return &Policy{table: make(map[string]map[Operation][]string)}
}

// Allow declares the accepted roles for one member operation. Chainable so a
// whole table reads as a single declaration.
func (p *Policy) Allow(entity, member string, op Operation, roles ...string) *Policy {
	key := entity + "." + member
	if p.table[key] == nil {
		p.table[key] = make(map[Operation][]string)
	}
	p.table[key][op] = roles
	return p
}

// Accepted returns the declared role list for a member operation, nil when
// none is declared.
func (p *Policy) Accepted(entity, member string, op Operation) []string {
	return p.table[entity+"."+member][op]
}

// CheckAccess resolves the accepted roles in declared order and permits the
// operation on the first True; RoleAny short-circuits unconditionally. When
// no accepted role holds, the operation is denied with no side effect.
func (p *Policy) CheckAccess(ctx context.Context, r *Resolution, entity, member string, op Operation) error {
	for _, role := range p.Accepted(entity, member, op) {
		if role == RoleAny {
			return nil
		}
		ok, err := r.Holds(ctx, role)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return domain.ErrAccessDenied
}

// DefaultPolicy declares the exposure table for the publishing entities.
func DefaultPolicy() *Policy {
	p := NewPolicy()

	p.Allow("User", "email", OpGet, RoleSelf).
		Allow("User", "email", OpSet, RoleCreator, RoleSelf).
		Allow("User", "username", OpGet, RoleAny).
		Allow("User", "username", OpSet, RoleCreator, RoleSelf).
		Allow("User", "password", OpSet, RoleCreator, RoleSelf).
		Allow("User", "bio", OpGet, RoleAny).
		Allow("User", "bio", OpSet, RoleSelf).
		Allow("User", "imageURL", OpGet, RoleAny).
		Allow("User", "imageURL", OpSet, RoleSelf).
		Allow("User", "signUp", OpCall, RoleCreator).
		Allow("User", "signIn", OpCall, RoleCreator).
		Allow("User", "favorite", OpCall, RoleSelf).
		Allow("User", "unfavorite", OpCall, RoleSelf).
		Allow("User", "follow", OpCall, RoleSelf).
		Allow("User", "unfollow", OpCall, RoleSelf)

	p.Allow("Article", "title", OpGet, RoleAny).
		Allow("Article", "title", OpSet, RoleCreator, RoleAuthor).
		Allow("Article", "description", OpGet, RoleAny).
		Allow("Article", "description", OpSet, RoleCreator, RoleAuthor).
		Allow("Article", "body", OpGet, RoleAny).
		Allow("Article", "body", OpSet, RoleCreator, RoleAuthor).
		Allow("Article", "tags", OpGet, RoleAny).
		Allow("Article", "tags", OpSet, RoleCreator, RoleAuthor).
		Allow("Article", "author", OpGet, RoleAny).
		Allow("Article", "author", OpSet, RoleAuthor).
		Allow("Article", "slug", OpGet, RoleAny).
		Allow("Article", "favoritesCount", OpGet, RoleAny).
		Allow("Article", "save", OpCall, RoleCreator, RoleAuthor).
		Allow("Article", "delete", OpCall, RoleAuthor)

	p.Allow("Comment", "body", OpGet, RoleAny).
		Allow("Comment", "body", OpSet, RoleCreator, RoleAuthor).
		Allow("Comment", "save", OpCall, RoleCreator, RoleAuthor).
		Allow("Comment", "delete", OpCall, RoleAuthor)

	return p
}
