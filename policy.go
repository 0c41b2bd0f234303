package auth

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-router"
)

// Access is the decision a policy rule makes for matching routes
type Access int

const (
	// AccessAuthenticated admits any verified identity
	AccessAuthenticated Access = iota
	// AccessPublic admits every request, identity or not
	AccessPublic
	// AccessEntitled admits only identities holding the rule's entitlement
	AccessEntitled
)

// PolicyRule binds a path pattern to an access decision. Patterns are
// exact matches unless they end in "/*", which matches the prefix and
// everything below it.
type PolicyRule struct {
	Pattern     string
	Access      Access
	Entitlement Entitlement
}

func (r PolicyRule) matches(path string) bool {
	if strings.HasSuffix(r.Pattern, "/*") {
		prefix := strings.TrimSuffix(r.Pattern, "/*")
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == r.Pattern
}

// AccessPolicy is an ordered route permission table. Rules are evaluated
// in registration order and the first match wins; requests matching no
// rule require an authenticated identity.
type AccessPolicy struct {
	rules []PolicyRule

	contextKey string

	// unauthenticated terminates requests with no verified identity
	unauthenticated router.HandlerFunc
	// forbidden terminates authenticated requests lacking an entitlement
	forbidden router.HandlerFunc

	logger Logger
}

// NewAccessPolicy creates an empty policy with bare 401/403 terminal
// handlers. The responses carry no body on purpose: the rejection reason
// stays in the server logs, never in the payload.
func NewAccessPolicy() *AccessPolicy {
	return &AccessPolicy{
		contextKey:      "user",
		unauthenticated: defaultUnauthenticatedHandler,
		forbidden:       defaultForbiddenHandler,
		logger:          defLogger{},
	}
}

func (p *AccessPolicy) WithLogger(l Logger) *AccessPolicy {
	if l != nil {
		p.logger = l
	}
	return p
}

// WithContextKey overrides the router locals key the token filter stored
// claims under
func (p *AccessPolicy) WithContextKey(key string) *AccessPolicy {
	if key != "" {
		p.contextKey = key
	}
	return p
}

// WithUnauthenticatedHandler replaces the 401 terminal handler
func (p *AccessPolicy) WithUnauthenticatedHandler(h router.HandlerFunc) *AccessPolicy {
	if h != nil {
		p.unauthenticated = h
	}
	return p
}

// WithForbiddenHandler replaces the 403 terminal handler
func (p *AccessPolicy) WithForbiddenHandler(h router.HandlerFunc) *AccessPolicy {
	if h != nil {
		p.forbidden = h
	}
	return p
}

// Public registers patterns reachable without an identity
func (p *AccessPolicy) Public(patterns ...string) *AccessPolicy {
	for _, pattern := range patterns {
		p.rules = append(p.rules, PolicyRule{Pattern: pattern, Access: AccessPublic})
	}
	return p
}

// Authenticated registers patterns requiring any verified identity
func (p *AccessPolicy) Authenticated(patterns ...string) *AccessPolicy {
	for _, pattern := range patterns {
		p.rules = append(p.rules, PolicyRule{Pattern: pattern, Access: AccessAuthenticated})
	}
	return p
}

// RequireEntitlement registers patterns requiring a specific entitlement
func (p *AccessPolicy) RequireEntitlement(e Entitlement, patterns ...string) *AccessPolicy {
	for _, pattern := range patterns {
		p.rules = append(p.rules, PolicyRule{
			Pattern:     pattern,
			Access:      AccessEntitled,
			Entitlement: e,
		})
	}
	return p
}

// Resolve returns the access decision for a path. The zero rule,
// requiring authentication, applies when nothing matches.
func (p *AccessPolicy) Resolve(path string) PolicyRule {
	for _, rule := range p.rules {
		if rule.matches(path) {
			return rule
		}
	}
	return PolicyRule{Pattern: path, Access: AccessAuthenticated}
}

// Gate returns the authorization stage of the request pipeline. It runs
// after the token filter and is the single place unauthenticated or
// under-entitled requests are terminated; business handlers below it can
// assume the policy already admitted the caller.
func (p *AccessPolicy) Gate() router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			rule := p.Resolve(ctx.Path())

			if rule.Access == AccessPublic {
				return ctx.Next()
			}

			claims, ok := GetRouterClaims(ctx, p.contextKey)
			if !ok {
				p.logger.Debug("access denied: no identity", "path", ctx.Path())
				return p.unauthenticated(ctx)
			}

			if rule.Access == AccessEntitled && !claims.HasEntitlement(rule.Entitlement) {
				p.logger.Debug("access denied: missing entitlement",
					"path", ctx.Path(),
					"subject", claims.Subject(),
					"entitlement", rule.Entitlement,
				)
				return p.forbidden(ctx)
			}

			return ctx.Next()
		}
	}
}

func defaultUnauthenticatedHandler(ctx router.Context) error {
	return ctx.Status(http.StatusUnauthorized).SendString("")
}

func defaultForbiddenHandler(ctx router.Context) error {
	return ctx.Status(http.StatusForbidden).SendString("")
}
