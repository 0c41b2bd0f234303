package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// entitlementClaimSeparator joins the entitlement set into the auth claim.
const entitlementClaimSeparator = ","

// AuthClaims represents verified token claims with entitlement checking
type AuthClaims interface {
	Subject() string
	Entitlements() EntitlementSet
	HasEntitlement(e Entitlement) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// TokenClaims is the concrete implementation of AuthClaims carried inside
// the JWT. The entitlement set travels as a single joined claim value,
// copied from the identity at issuance time and never re-read from storage.
type TokenClaims struct {
	jwt.RegisteredClaims
	Auth string `json:"auth,omitempty"`
}

var _ AuthClaims = (*TokenClaims)(nil)

// Subject returns the subject claim, the authenticated username
func (c *TokenClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// Entitlements returns the entitlement set captured at issuance
func (c *TokenClaims) Entitlements() EntitlementSet {
	return ParseEntitlementSet(c.Auth, entitlementClaimSeparator)
}

// HasEntitlement checks if the token grants a specific entitlement
func (c *TokenClaims) HasEntitlement(e Entitlement) bool {
	return c.Entitlements().Has(e)
}

// Expires returns the expiration time
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *TokenClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
