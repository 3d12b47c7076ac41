package account

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the account subsystem options, loaded from the
// environment.
type Config struct {
	Registration    bool   `env:"ACCOUNT_REGISTRATION" envDefault:"true"`
	SigningKey      string `env:"ACCOUNT_SIGNING_KEY"`
	TokenExpiration int    `env:"ACCOUNT_TOKEN_EXPIRATION" envDefault:"24"`
	Issuer          string `env:"ACCOUNT_TOKEN_ISSUER" envDefault:"go-account"`
	CookieName      string `env:"ACCOUNT_COOKIE_NAME" envDefault:"auth_token"`
}

var _ Settings = (*Config)(nil)

// NewConfigFromEnv loads configuration from environment variables.
func NewConfigFromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// RegistrationOpen reports whether new accounts may be created during
// social identity resolution.
func (c *Config) RegistrationOpen() bool {
	return c.Registration
}

func (c *Config) GetSigningKey() string {
	return c.SigningKey
}

func (c *Config) GetTokenExpiration() int {
	return c.TokenExpiration
}

func (c *Config) GetIssuer() string {
	return c.Issuer
}

func (c *Config) GetCookieName() string {
	return c.CookieName
}
