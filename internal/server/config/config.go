// Package config builds the server configuration from defaults, an optional
// JSON file, the environment and command-line flags, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/andreacfromtheapp/random-word-api-sub000/internal/flagx"
)

const (
	// DefaultSecretKey is only suitable for local development; the server
	// warns when it is in use.
	DefaultSecretKey = "default_jwt_secret_change_in_production"

	MinTokenLifetimeMinutes = 1
	MaxTokenLifetimeMinutes = 7 * 24 * 60
)

// Config holds runtime settings for the word API server.
//
// DatabaseDSN selects the store: postgres:// URLs use PostgreSQL, anything
// else is an SQLite path such as "sqlite:data/words.db".
type Config struct {
	EndpointAddrHTTP     string `env:"BIND_ADDR"`
	EndpointAddrGRPC     string `env:"GRPC_ADDR"`
	DatabaseDSN          string `env:"DATABASE_URL"`
	SecretKey            string `env:"JWT_SECRET"`
	TokenLifetimeMinutes int    `env:"JWT_EXPIRATION_MINUTES"`
	HashConcurrency      int    `env:"HASH_CONCURRENCY"`
	LogLevel             string `env:"LOG_LEVEL"`

	// ConfigFile is the JSON file given with -c/-config, if any. It is
	// watched for changes to the auth settings.
	ConfigFile string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":3000"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = "sqlite:data/random-words.db"
	c.SecretKey = DefaultSecretKey
	c.TokenLifetimeMinutes = 60
	c.HashConcurrency = 0
	c.LogLevel = "info"
}

// Load builds a Config from args (without the program name) and environ
// (in os.Environ form), then validates it.
func Load(args, environ []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	cfg.ConfigFile = flagx.ConfigPath(args)
	if cfg.ConfigFile != "" {
		if err := parseJson(cfg, cfg.ConfigFile); err != nil {
			return nil, err
		}
	}
	if err := parseEnv(cfg, environ); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over the process arguments and environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:], os.Environ())
}

// Validate checks the settings the auth core depends on.
func (c *Config) Validate() error {
	if err := ValidateAuthSettings(c.SecretKey, c.TokenLifetimeMinutes); err != nil {
		return err
	}
	if c.DatabaseDSN == "" {
		return errors.New("database dsn must not be empty")
	}
	if c.EndpointAddrHTTP == "" && c.EndpointAddrGRPC == "" {
		return errors.New("at least one of the HTTP or gRPC addresses must be set")
	}
	if c.HashConcurrency < 0 {
		return fmt.Errorf("hash concurrency must not be negative, got %d", c.HashConcurrency)
	}
	return nil
}

// ValidateAuthSettings checks a signing secret and token lifetime.
func ValidateAuthSettings(secret string, lifetimeMinutes int) error {
	if secret == "" {
		return errors.New("jwt secret must not be empty")
	}
	if lifetimeMinutes < MinTokenLifetimeMinutes || lifetimeMinutes > MaxTokenLifetimeMinutes {
		return fmt.Errorf("token lifetime must be between %d and %d minutes, got %d",
			MinTokenLifetimeMinutes, MaxTokenLifetimeMinutes, lifetimeMinutes)
	}
	return nil
}

// Settings returns the auth settings snapshot of c.
func (c *Config) Settings() Settings {
	return Settings{Secret: []byte(c.SecretKey), TokenLifetimeMinutes: c.TokenLifetimeMinutes}
}
