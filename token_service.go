package auth

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenCodecImpl implements the TokenCodec interface using a symmetric
// HS512 signature. The signing key material is decoded once at construction
// and is read-only afterwards, so concurrent Encode/Decode calls need no
// locking.
type TokenCodecImpl struct {
	signingKey []byte
	validity   time.Duration
	issuer     string
	logger     Logger
}

// NewTokenCodec creates a TokenCodec. signingKey is the Base64 encoding of
// the symmetric secret as found in configuration.
func NewTokenCodec(signingKey string, validity time.Duration, issuer string, logger Logger) (*TokenCodecImpl, error) {
	if logger == nil {
		logger = defLogger{}
	}

	key, err := base64.StdEncoding.DecodeString(signingKey)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "signing key is not valid base64")
	}

	if len(key) == 0 {
		return nil, errors.New("signing key must not be empty", errors.CategoryBadInput)
	}

	if validity <= 0 {
		return nil, errors.New("token validity must be positive", errors.CategoryBadInput)
	}

	return &TokenCodecImpl{
		signingKey: key,
		validity:   validity,
		issuer:     issuer,
		logger:     logger,
	}, nil
}

// Encode signs the identity and its entitlement set into a compact token.
// The entitlements are whatever the caller verified at that instant; they
// are not re-read on later requests.
func (tc *TokenCodecImpl) Encode(identity Identity, entitlements EntitlementSet) (string, error) {
	if identity == nil {
		return "", errors.New("identity must not be nil", errors.CategoryInternal)
	}

	now := time.Now()
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tc.issuer,
			Subject:   identity.Username(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.validity)),
		},
		Auth: entitlements.Join(entitlementClaimSeparator),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)

	signed, err := token.SignedString(tc.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign token")
	}

	return signed, nil
}

// Decode parses and verifies a presented token string. Verification is a
// pure function of the string, the signing key, and the clock; storage is
// never consulted.
func (tc *TokenCodecImpl) Decode(raw string) (AuthClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
	}
	if tc.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(tc.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			tc.logger.Error("token codec encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tc.signingKey, nil
	}, parserOptions...)

	if err != nil {
		return nil, tc.decodeError(err)
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}

	tc.logger.Error("token codec could not map verified claims")
	return nil, ErrTokenMalformed
}

// decodeError collapses the parser's failure modes into the fixed taxonomy:
// expired, bad signature, or malformed. No other detail escapes.
func (tc *TokenCodecImpl) decodeError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignatureInvalid
	default:
		return errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode).
			WithCode(errors.CodeUnauthorized)
	}
}
