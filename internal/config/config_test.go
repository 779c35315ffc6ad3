package config_test

import (
	"testing"
	"time"

	"jobmate/board-client/internal/config"
)

func TestLoad_RequiresAPIURL(t *testing.T) {
	t.Setenv("API_URL", "")
	if _, err := config.Load(); err == nil {
		t.Error("expected error when API_URL is missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_URL", "http://localhost:8000")
	t.Setenv("REFRESH_INTERVAL", "")
	t.Setenv("HTTP_TIMEOUT", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("SAVED_DB", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RefreshInterval != 5*time.Minute {
		t.Errorf("RefreshInterval = %s, want 5m", cfg.RefreshInterval)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("HTTPTimeout = %s, want 15s", cfg.HTTPTimeout)
	}
	if cfg.RedisURL != "" || cfg.SavedDB != "" {
		t.Error("optional values should default to empty")
	}
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("API_URL", "http://localhost:8000")
	for _, v := range []string{"soon", "-1m", "0s"} {
		t.Setenv("REFRESH_INTERVAL", v)
		if _, err := config.Load(); err == nil {
			t.Errorf("REFRESH_INTERVAL=%q should be rejected", v)
		}
	}
}

func TestLoadAuthority(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := config.LoadAuthority(); err == nil {
		t.Error("expected error when JWT_SECRET is missing")
	}

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("AUTHORITY_PORT", "")
	cfg, err := config.LoadAuthority()
	if err != nil {
		t.Fatalf("LoadAuthority: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("Port = %q, want 8000", cfg.Port)
	}
}
