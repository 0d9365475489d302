package auth

import (
	"context"
	"strings"
)

// Principal is the resolved identity attached to a request after successful
// authentication.
type Principal struct {
	Subject string
	Role    string
}

// HasRole reports whether the principal carries the given role tag.
func (p Principal) HasRole(role string) bool {
	return strings.EqualFold(p.Role, strings.TrimSpace(role))
}

type principalContextKey struct{}

// ContextWithPrincipal attaches the principal to the context. The operation is
// set-if-absent: an already installed principal is never replaced, which keeps
// the authentication filter idempotent within one request.
func ContextWithPrincipal(ctx context.Context, principal Principal) context.Context {
	if _, ok := PrincipalFromContext(ctx); ok {
		return ctx
	}
	return context.WithValue(ctx, principalContextKey{}, &principal)
}

// PrincipalFromContext extracts the authenticated principal from the context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	v, ok := ctx.Value(principalContextKey{}).(*Principal)
	if !ok || v == nil {
		return Principal{}, false
	}
	return *v, true
}
