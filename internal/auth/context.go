package auth

import (
	"context"

	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/google/uuid"
)

type identityKey struct{}

func WithIdentity(ctx context.Context, id *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored by the auth middleware, if any.
func IdentityFrom(ctx context.Context) (*domain.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*domain.Identity)
	return id, ok && id != nil
}

// SystemIdentity is used by the command line tools, which run without a token.
func SystemIdentity() *domain.Identity {
	return &domain.Identity{UserID: uuid.Nil, Email: "system@medstock.local", Role: domain.RoleAdmin}
}

// HasRole reports whether the identity holds one of the given roles. Admins
// pass every check.
func HasRole(id *domain.Identity, roles ...domain.Role) bool {
	if id == nil {
		return false
	}
	if id.Role == domain.RoleAdmin {
		return true
	}
	for _, r := range roles {
		if id.Role == r {
			return true
		}
	}
	return false
}
