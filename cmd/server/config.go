package main

import (
	"time"
)

// Config is the server runtime configuration, populated from the
// environment. SigningKey is the Base64 encoding of the HMAC secret.
type Config struct {
	Address    string `env:"SERVER_ADDRESS" envDefault:":8580"`
	DSN        string `env:"DATABASE_DSN" envDefault:"file::memory:?cache=shared"`
	Debug      bool   `env:"DEBUG" envDefault:"false"`
	LogRoutes  bool   `env:"LOG_ROUTES" envDefault:"false"`
	SigningKey string `env:"JWT_SIGNING_KEY,notEmpty"`
	Validity   int64  `env:"JWT_TOKEN_VALIDITY_SECONDS" envDefault:"86400"`
	Issuer     string `env:"JWT_ISSUER" envDefault:""`
	ContextKey string `env:"AUTH_CONTEXT_KEY" envDefault:"user"`
	Lookup     string `env:"AUTH_TOKEN_LOOKUP" envDefault:"header:Authorization"`
	Scheme     string `env:"AUTH_SCHEME" envDefault:"Bearer"`
}

func (c *Config) GetSigningKey() string {
	return c.SigningKey
}

func (c *Config) GetTokenValidity() time.Duration {
	return time.Duration(c.Validity) * time.Second
}

func (c *Config) GetIssuer() string {
	return c.Issuer
}

func (c *Config) GetContextKey() string {
	return c.ContextKey
}

func (c *Config) GetTokenLookup() string {
	return c.Lookup
}

func (c *Config) GetAuthScheme() string {
	return c.Scheme
}
