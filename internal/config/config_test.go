package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_ENV", "missing")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.SweepSchedule != "@every 1h" {
		t.Errorf("expected hourly sweep, got %q", cfg.SweepSchedule)
	}
	if cfg.PingPeriod != 54*time.Second || cfg.PongWait != 60*time.Second {
		t.Errorf("unexpected keepalive timings %s/%s", cfg.PingPeriod, cfg.PongWait)
	}
	if !slices.Equal(cfg.AllowedOrigins, []string{"*"}) {
		t.Errorf("expected all origins allowed, got %v", cfg.AllowedOrigins)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := []byte("mode: debug\nport: 9000\nchat_rate_limit: 5\nallowed_origins:\n  - http://localhost:5173\n")
	if err := os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), yaml, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("CONFIG_ENV", "test")
	t.Setenv("RELAY_PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "debug" {
		t.Errorf("expected mode from file, got %q", cfg.Mode)
	}
	if cfg.Port != 9100 {
		t.Errorf("expected env to override port, got %d", cfg.Port)
	}
	if cfg.ChatRateLimit != 5 {
		t.Errorf("expected chat_rate_limit 5, got %d", cfg.ChatRateLimit)
	}
	if !slices.Equal(cfg.AllowedOrigins, []string{"http://localhost:5173"}) {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
}

func TestLoadRejectsBadKeepalive(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_ENV", "missing")
	t.Setenv("RELAY_PING_PERIOD", "2m")

	if _, err := Load(); err == nil {
		t.Error("expected ping_period >= pong_wait to be rejected")
	}
}
