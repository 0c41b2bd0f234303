// Package auth implements a stateless bearer-token scheme for a multi-user
// HTTP service: signed JWT issuance and verification, credential
// authentication against a user store, and the request pipeline pieces
// (token filter, per-route access policy, current-identity accessors) that
// make the verified caller available to business handlers.
//
// Token lifecycle:
//   - TokenCodec signs claims (subject, entitlement set, iat/exp) with a
//     process-wide symmetric key decoded once at startup. Verification is a
//     pure function of the token, the key, and the clock; no server-side
//     token state exists, so an issued token stays valid until expiry even
//     if the identity is deactivated afterwards.
//   - Auther exchanges credentials for a token via an IdentityProvider and
//     never persists, logs, or echoes password material.
//
// Request pipeline:
//   - middleware/tokenware extracts and verifies the bearer token and
//     installs the claims into the request context. It never rejects on its
//     own; absence of identity is handled by the access policy gate, so
//     public routes keep working with missing or malformed tokens.
//   - AccessPolicy maps route patterns to requirements (public,
//     authenticated, entitlement-gated) and terminates rejected requests
//     with bare 401/403 responses.
package auth
