package config

import (
	"strings"
	"time"
)

const (
	// DefaultAPIURL matches the catalog API's local development address.
	DefaultAPIURL = "http://localhost:8080/api"

	minAPITimeout = 500 * time.Millisecond
	maxAPITimeout = 5 * time.Minute
)

// APIConfig contains the catalog API client configuration.
type APIConfig struct {
	// URL is the base URL every endpoint path is appended to.
	URL string `env:"URL" envDefault:"http://localhost:8080/api"`

	// Timeout aborts a hung request. A timeout surfaces as a network failure, never as an auth failure.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`

	// UserAgent is sent on every request.
	UserAgent string `env:"USER_AGENT" envDefault:"catalog-admin"`

	// DefaultPageSize is used by list commands when no explicit size is given.
	DefaultPageSize int `env:"PAGE_SIZE" envDefault:"20"`
}

// Sanitize applies guardrails to API client configuration values.
func (a *APIConfig) Sanitize() {
	a.URL = strings.TrimRight(strings.TrimSpace(a.URL), "/")
	if a.URL == "" {
		a.URL = DefaultAPIURL
	}

	switch {
	case a.Timeout <= 0:
		a.Timeout = 10 * time.Second
	case a.Timeout < minAPITimeout:
		a.Timeout = minAPITimeout
	case a.Timeout > maxAPITimeout:
		a.Timeout = maxAPITimeout
	}

	a.UserAgent = strings.TrimSpace(a.UserAgent)
	if a.UserAgent == "" {
		a.UserAgent = "catalog-admin"
	}

	if !IsValidPageSize(a.DefaultPageSize) {
		a.DefaultPageSize = DefaultPageSize
	}
}

// DefaultPageSize is the page size used when none is configured.
const DefaultPageSize = 20

// PageSizeOptions lists the page sizes the catalog API accepts.
func PageSizeOptions() []int {
	return []int{10, 20, 50, 100}
}

// IsValidPageSize reports whether n is one of PageSizeOptions.
func IsValidPageSize(n int) bool {
	for _, opt := range PageSizeOptions() {
		if opt == n {
			return true
		}
	}
	return false
}
