package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - api.go: Catalog API endpoint and client configuration
//   - auth.go: Role configuration for the local session
//   - database.go: Postgres and Redis connection configuration
//   - storage.go: Session persistence backend selection
//   - logging.go: Structured logging configuration
type AppConfig struct {
	// IsDev controls development mode behavior (debug logging, verbose errors).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Catalog API client configuration
	API APIConfig `envPrefix:"CATALOG_API_"`

	// Authentication configuration
	Auth AuthConfig `envPrefix:"AUTH_"`

	// Session persistence configuration
	Storage StorageConfig `envPrefix:"STORAGE_"`

	// Database configuration (used by the postgres and redis storage backends)
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// Logging configuration
	Logging LoggingConfig `envPrefix:"LOG_"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.API.Sanitize()
	c.Auth.Sanitize()
	c.Storage.Sanitize()

	// Check NODE_ENV for dev mode
	c.detectDevMode()

	c.Logging.Sanitize(c.IsDev)
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// This is called by Sanitize() to ensure IsDev is set correctly.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
