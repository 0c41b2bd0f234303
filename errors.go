package auth

import (
	"github.com/goliatone/go-errors"
)

// Text codes attached to rich errors so API clients can branch on a stable
// identifier instead of parsing messages.
const (
	TextCodeIdentityNotFound    = "IDENTITY_NOT_FOUND"
	TextCodeIdentityDeactivated = "IDENTITY_DEACTIVATED"
	TextCodeBadCredentials      = "BAD_CREDENTIALS"
	TextCodeDuplicateIdentity   = "DUPLICATE_IDENTITY"
	TextCodeTokenExpired        = "TOKEN_EXPIRED"
	TextCodeTokenMalformed      = "TOKEN_MALFORMED"
	TextCodeTokenSignature      = "TOKEN_SIGNATURE_INVALID"
)

// ErrIdentityNotFound is returned when the username resolves to no identity
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryAuth).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(errors.CodeUnauthorized)

// ErrIdentityDeactivated is returned for identities with activated = false.
// Tokens issued before deactivation keep working until they expire.
var ErrIdentityDeactivated = errors.New("identity is deactivated", errors.CategoryAuth).
	WithTextCode(TextCodeIdentityDeactivated).
	WithCode(errors.CodeUnauthorized)

// ErrBadCredentials is returned when the supplied password does not match
// the stored hash
var ErrBadCredentials = errors.New("bad credentials", errors.CategoryAuth).
	WithTextCode(TextCodeBadCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrDuplicateIdentity is returned on signup when the username is taken
var ErrDuplicateIdentity = errors.New("username already registered", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateIdentity).
	WithCode(errors.CodeConflict)

// ErrTokenExpired is returned by Decode for tokens past their expiry
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned by Decode for strings that do not parse as
// a token of the expected structure
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenSignatureInvalid is returned by Decode when the signature does not
// verify against the signing key material
var ErrTokenSignatureInvalid = errors.New("token signature is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenSignature).
	WithCode(errors.CodeUnauthorized)

// IsAuthError reports whether err belongs to the authentication category,
// meaning it must surface externally as a generic 401 without detail.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.Category == errors.CategoryAuth
	}
	return false
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	return hasTextCode(err, TextCodeTokenExpired)
}

// IsMalformedError will check for structurally invalid tokens
func IsMalformedError(err error) bool {
	return hasTextCode(err, TextCodeTokenMalformed)
}

// IsDuplicateIdentityError will check for signup conflicts
func IsDuplicateIdentityError(err error) bool {
	return hasTextCode(err, TextCodeDuplicateIdentity)
}

func hasTextCode(err error, textCode string) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == textCode
	}
	return false
}
