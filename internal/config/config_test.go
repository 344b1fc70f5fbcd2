package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.HTTPPort != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.AccessTTL != 15*time.Minute {
		t.Errorf("expected default access ttl 15m, got %s", cfg.AccessTTL)
	}
	if cfg.DuplicateWindowSeconds != 0 {
		t.Errorf("expected duplicate suppression disabled by default, got %d", cfg.DuplicateWindowSeconds)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9191")
	t.Setenv("ACCESS_TTL", "30m")
	t.Setenv("DUPLICATE_WINDOW_SECONDS", "30")
	t.Setenv("RATE_LIMIT_PER_MIN", "not-a-number")

	cfg := Load()
	if cfg.HTTPPort != "9191" {
		t.Errorf("expected port override, got %s", cfg.HTTPPort)
	}
	if cfg.AccessTTL != 30*time.Minute {
		t.Errorf("expected access ttl 30m, got %s", cfg.AccessTTL)
	}
	if cfg.DuplicateWindowSeconds != 30 {
		t.Errorf("expected duplicate window 30, got %d", cfg.DuplicateWindowSeconds)
	}
	if cfg.RateLimitPerMin != 120 {
		t.Errorf("expected fallback rate limit on bad value, got %d", cfg.RateLimitPerMin)
	}
}
