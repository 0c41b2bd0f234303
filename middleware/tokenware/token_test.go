package tokenware_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auth "github.com/lib26/Spring-Security-Study"
	"github.com/lib26/Spring-Security-Study/middleware/tokenware"
)

// signingKey is the Base64 form of the HMAC secret used across tests
const signingKey = "dGVzdC1zaWduaW5nLWtleS0wMTIzNDU2Nzg5YWJjZGVm"

type testIdentity struct {
	username     string
	entitlements auth.EntitlementSet
}

func (t testIdentity) ID() string                        { return "id-" + t.username }
func (t testIdentity) Username() string                  { return t.username }
func (t testIdentity) Nickname() string                  { return t.username }
func (t testIdentity) Entitlements() auth.EntitlementSet { return t.entitlements }
func (t testIdentity) Active() bool                      { return true }

// codecValidator adapts the token codec to the filter's validator interface
type codecValidator struct {
	codec auth.TokenCodec
}

func (v codecValidator) Decode(raw string) (tokenware.AuthClaims, error) {
	claims, err := v.codec.Decode(raw)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func newValidator(t *testing.T) (codecValidator, string) {
	t.Helper()

	codec, err := auth.NewTokenCodec(signingKey, time.Hour, "tokenware-test", nil)
	require.NoError(t, err)

	identity := testIdentity{
		username:     "testuser",
		entitlements: auth.NewEntitlementSet(auth.EntitlementUser),
	}

	token, err := codec.Encode(identity, identity.Entitlements())
	require.NoError(t, err)

	return codecValidator{codec: codec}, token
}

func noop(ctx router.Context) error {
	return nil
}

func TestTokenFilterInstallsClaims(t *testing.T) {
	validator, token := newValidator(t)

	handler := tokenware.New(tokenware.Config{
		Validator: validator,
	})(noop)

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer " + token
	ctx.On("GetString", "Authorization", "").Return("Bearer " + token)
	ctx.On("Locals", "user", mock.Anything).Return(nil)

	err := handler(ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled)

	val := ctx.Locals("user")
	require.NotNil(t, val)

	claims, ok := val.(tokenware.AuthClaims)
	require.True(t, ok, "expected AuthClaims, got %T", val)
	assert.Equal(t, "testuser", claims.Subject())
}

func TestTokenFilterContinuesWithoutToken(t *testing.T) {
	validator, _ := newValidator(t)

	handler := tokenware.New(tokenware.Config{
		Validator: validator,
	})(noop)

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("")

	err := handler(ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled, "absent token continues the pipeline")
	assert.Empty(t, ctx.LocalsMock)
}

func TestTokenFilterContinuesOnInvalidToken(t *testing.T) {
	validator, _ := newValidator(t)

	var rejected error
	handler := tokenware.New(tokenware.Config{
		Validator: validator,
		OnRejected: func(ctx router.Context, err error) {
			rejected = err
		},
	})(noop)

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer garbage.token.value"
	ctx.On("GetString", "Authorization", "").Return("Bearer garbage.token.value")

	err := handler(ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled, "invalid token still continues the pipeline")
	assert.Empty(t, ctx.LocalsMock, "no identity installed for invalid tokens")

	require.Error(t, rejected)
	assert.True(t, auth.IsAuthError(rejected))
}

func TestTokenFilterWrongScheme(t *testing.T) {
	validator, token := newValidator(t)

	handler := tokenware.New(tokenware.Config{
		Validator: validator,
	})(noop)

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Basic " + token
	ctx.On("GetString", "Authorization", "").Return("Basic " + token)

	err := handler(ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled)
	assert.Empty(t, ctx.LocalsMock)
}

func TestTokenFilterRequiresSchemeSeparator(t *testing.T) {
	validator, token := newValidator(t)

	handler := tokenware.New(tokenware.Config{
		Validator: validator,
	})(noop)

	// "Bearer<token>" with no space is not a valid scheme prefix
	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer" + token
	ctx.On("GetString", "Authorization", "").Return("Bearer" + token)

	err := handler(ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled)
	assert.Empty(t, ctx.LocalsMock)
}

func TestTokenFilterQueryExtraction(t *testing.T) {
	validator, token := newValidator(t)

	handler := tokenware.New(tokenware.Config{
		Validator:   validator,
		TokenLookup: "query:auth_token",
	})(noop)

	ctx := router.NewMockContext()
	ctx.QueriesM["auth_token"] = token
	ctx.On("Query", "auth_token", "").Return(token)
	ctx.On("Locals", "user", mock.Anything).Return(nil)

	err := handler(ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled)
	require.NotNil(t, ctx.Locals("user"))
}

func TestTokenFilterSkipsViaFilter(t *testing.T) {
	validator, _ := newValidator(t)

	handler := tokenware.New(tokenware.Config{
		Validator: validator,
		Filter: func(ctx router.Context) bool {
			return true
		},
	})(noop)

	ctx := router.NewMockContext()

	err := handler(ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled)
	assert.Empty(t, ctx.LocalsMock)
}

func TestGetExtractorsParsesLookup(t *testing.T) {
	extractors := tokenware.GetExtractors("header:Authorization,query:auth_token,cookie:jwt")
	assert.Len(t, extractors, 3)

	extractors = tokenware.GetExtractors("header:Authorization")
	assert.Len(t, extractors, 1)

	// malformed segments are skipped
	extractors = tokenware.GetExtractors("bogus")
	assert.Len(t, extractors, 0)
}

func TestGetDefaultConfig(t *testing.T) {
	validator, _ := newValidator(t)

	cfg := tokenware.GetDefaultConfig(tokenware.Config{Validator: validator})
	assert.Equal(t, "user", cfg.ContextKey)
	assert.Equal(t, "Bearer", cfg.AuthScheme)
	assert.Equal(t, "header:"+router.HeaderAuthorization, cfg.TokenLookup)

	assert.Panics(t, func() {
		tokenware.GetDefaultConfig()
	})
}
