// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds the runtime configuration of the board client.
type Config struct {
	APIURL          string
	APIToken        string
	RefreshInterval time.Duration
	HTTPTimeout     time.Duration
	RedisURL        string // optional; empty disables event publishing
	SavedDB         string // optional sqlite path; empty keeps saved jobs in memory
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		return nil, fmt.Errorf("API_URL is required")
	}

	refresh, err := durationEnv("REFRESH_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	timeout, err := durationEnv("HTTP_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	return &Config{
		APIURL:          apiURL,
		APIToken:        os.Getenv("API_TOKEN"),
		RefreshInterval: refresh,
		HTTPTimeout:     timeout,
		RedisURL:        os.Getenv("REDIS_URL"),
		SavedDB:         os.Getenv("SAVED_DB"),
	}, nil
}

// AuthorityConfig holds the runtime configuration of the reference authority.
type AuthorityConfig struct {
	Port        string
	DatabaseURL string // optional; empty serves from memory
	JWTSecret   string
}

// LoadAuthority reads the authority's environment variables.
func LoadAuthority() (*AuthorityConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	port := os.Getenv("AUTHORITY_PORT")
	if port == "" {
		port = "8000"
	}

	return &AuthorityConfig{
		Port:        port,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   secret,
	}, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, s)
	}
	return d, nil
}
