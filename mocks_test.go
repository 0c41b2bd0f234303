package auth_test

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/stretchr/testify/mock"

	auth "github.com/lib26/Spring-Security-Study"
)

// testSigningKey is the Base64 form of the HMAC secret used across tests
var testSigningKey = base64.StdEncoding.EncodeToString([]byte("test-signing-key-0123456789abcdef"))

// TestIdentity is a simple implementation of Identity interface for testing
type TestIdentity struct {
	id           string
	username     string
	nickname     string
	entitlements auth.EntitlementSet
	active       bool
}

func (t TestIdentity) ID() string                        { return t.id }
func (t TestIdentity) Username() string                  { return t.username }
func (t TestIdentity) Nickname() string                  { return t.nickname }
func (t TestIdentity) Entitlements() auth.EntitlementSet { return t.entitlements }
func (t TestIdentity) Active() bool                      { return t.active }

// MockIdentityProvider implements auth.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, username, password string) (auth.Identity, error) {
	args := m.Called(ctx, username, password)
	if identity, ok := args.Get(0).(auth.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByUsername(ctx context.Context, username string) (auth.Identity, error) {
	args := m.Called(ctx, username)
	if identity, ok := args.Get(0).(auth.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockConfig implements auth.Config
type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) GetSigningKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetTokenValidity() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

func (m *MockConfig) GetIssuer() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetContextKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetTokenLookup() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetAuthScheme() string {
	args := m.Called()
	return args.String(0)
}

func testTokenValidity() time.Duration {
	return time.Hour
}

func newMockConfig() *MockConfig {
	mockConfig := new(MockConfig)
	mockConfig.On("GetSigningKey").Return(testSigningKey)
	mockConfig.On("GetTokenValidity").Return(time.Hour)
	mockConfig.On("GetIssuer").Return("auth-test")
	mockConfig.On("GetContextKey").Return("user")
	mockConfig.On("GetTokenLookup").Return("header:Authorization")
	mockConfig.On("GetAuthScheme").Return("Bearer")
	return mockConfig
}

// MockUserStore implements auth.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	args := m.Called(ctx, username)
	if user, ok := args.Get(0).(*auth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}
