package auth

import (
	"context"

	"github.com/goliatone/go-router"
)

var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithClaimsContext sets the verified AuthClaims in the given context. The
// context is request-scoped, so the claims vanish with the request; nothing
// here is process-global.
func WithClaimsContext(r context.Context, claims AuthClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// CurrentUsername returns the authenticated caller for the current request,
// or false when the request carries no identity. Safe to call from
// arbitrarily deep business logic; it resolves strictly against the calling
// request's context.
func CurrentUsername(ctx context.Context) (string, bool) {
	claims, ok := GetClaims(ctx)
	if !ok {
		return "", false
	}
	return claims.Subject(), true
}

// HasEntitlement checks an entitlement directly from the standard context
func HasEntitlement(ctx context.Context, e Entitlement) bool {
	claims, ok := GetClaims(ctx)
	if !ok {
		return false
	}
	return claims.HasEntitlement(e)
}

// GetRouterClaims extracts the AuthClaims from the router context
func GetRouterClaims(ctx router.Context, key string) (AuthClaims, bool) {
	if key == "" {
		key = "user" // Default key used by the token filter
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	claims, ok := raw.(AuthClaims)
	return claims, ok
}

// CurrentUsernameFromRouter resolves the caller from the router context
func CurrentUsernameFromRouter(ctx router.Context, key string) (string, bool) {
	claims, ok := GetRouterClaims(ctx, key)
	if !ok {
		return "", false
	}
	return claims.Subject(), true
}
