package auth

import (
	"context"
	"reflect"
)

// Auther orchestrates credential verification and token issuance
type Auther struct {
	provider IdentityProvider
	codec    TokenCodec
	logger   Logger
}

// NewAuthenticator returns a new Authenticator backed by the provider and
// the codec built from opts.
func NewAuthenticator(provider IdentityProvider, opts Config) (*Auther, error) {
	codec, err := NewTokenCodec(
		opts.GetSigningKey(),
		opts.GetTokenValidity(),
		opts.GetIssuer(),
		defLogger{},
	)
	if err != nil {
		return nil, err
	}

	return &Auther{
		provider: provider,
		codec:    codec,
		logger:   defLogger{},
	}, nil
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Auther) WithTokenCodec(codec TokenCodec) *Auther {
	if codec != nil {
		s.codec = codec
	}
	return s
}

// TokenCodec returns the codec used by this Authenticator
func (s *Auther) TokenCodec() TokenCodec {
	return s.codec
}

// Login exchanges a credential claim for a signed token. The entitlement
// set is copied into the token at this instant; later entitlement changes
// do not affect tokens already issued.
func (s *Auther) Login(ctx context.Context, username, password string) (string, error) {
	identity, err := s.provider.VerifyIdentity(ctx, username, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		return "", err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return "", ErrIdentityNotFound
	}

	token, err := s.codec.Encode(identity, identity.Entitlements())
	if err != nil {
		s.logger.Error("Login token encode error", "error", err)
		return "", err
	}

	return token, nil
}

// ClaimsFromToken verifies a presented token and returns its claims
func (s *Auther) ClaimsFromToken(raw string) (AuthClaims, error) {
	claims, err := s.codec.Decode(raw)
	if err != nil {
		s.logger.Debug("ClaimsFromToken validation failed", "error", err)
		return nil, err
	}

	return claims, nil
}

var _ Authenticator = (*Auther)(nil)
