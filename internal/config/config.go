// Package config loads process configuration from the environment once at
// startup. Services receive the resulting struct by reference; nothing reads
// environment variables at call time.
package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

// Config holds every tunable of the process.
type Config struct {
	Addr        string `env:"ADDR" envDefault:":8080"`
	DatabaseURL string `env:"DATABASE_URL"`

	// SessionTTL is the fixed lifetime of an issued session token.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`

	// AdminEmails lists users allowed to call the administrative
	// session-cleanup endpoint.
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`

	OIDC OIDC `envPrefix:"OIDC_"`
	AI   AI   `envPrefix:"AI_"`
}

// OIDC configures the optional single sign-on login path. SSO is enabled
// when an issuer URL is set.
type OIDC struct {
	IssuerURL    string `env:"ISSUER_URL"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"`
}

// Enabled reports whether SSO login should be offered.
func (o OIDC) Enabled() bool {
	return o.IssuerURL != ""
}

// AI configures the external text-completion service used for natural
// language task parsing.
type AI struct {
	BaseURL string        `env:"BASE_URL"`
	APIKey  string        `env:"API_KEY"`
	Model   string        `env:"MODEL" envDefault:"gpt-3.5-turbo"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, errors.New("BCRYPT_COST out of range")
	}
	if cfg.SessionTTL <= 0 {
		return nil, errors.New("SESSION_TTL must be positive")
	}
	return cfg, nil
}
