package auth

import (
	"context"

	"nestpoint/internal/model"
	"nestpoint/internal/principal"
)

type contextKey struct{}

// Context is the per-request identity. Principal is always set once the auth
// middleware has run; SpaceID and Role are set only behind the space
// membership middleware.
type Context struct {
	Principal principal.Principal
	SpaceID   string
	Role      string
}

func WithContext(ctx context.Context, ac Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (Context, bool) {
	ac, ok := ctx.Value(contextKey{}).(Context)
	return ac, ok
}

func UserID(ctx context.Context) string {
	ac, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return ac.Principal.UserID
}

func SpaceID(ctx context.Context) string {
	ac, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return ac.SpaceID
}

func IsAdmin(ctx context.Context) bool {
	ac, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return model.IsAdminRole(ac.Role)
}
