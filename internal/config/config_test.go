package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadParsesSectionsAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
server:
  port: "9000"
redis:
  addr: "localhost:6379"
  prefix: "kentei:"
quiz:
  topics: ["history", "science"]
  batch_size: 5
  ttl: "48h"
rate_limit:
  max: 3
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PORT", "")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("ADMIN_TOKEN", "secret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9000" {
		t.Fatalf("expected port from file, got %q", cfg.Server.Port)
	}
	if cfg.Redis.Addr != "redis:6380" {
		t.Fatalf("expected env override for redis addr, got %q", cfg.Redis.Addr)
	}
	if cfg.Server.AdminToken != "secret" {
		t.Fatalf("expected admin token from env, got %q", cfg.Server.AdminToken)
	}
	if len(cfg.Quiz.Topics) != 2 || cfg.Quiz.BatchSize != 5 || cfg.RateLimit.Max != 3 {
		t.Fatalf("unexpected quiz section: %+v", cfg.Quiz)
	}
	if got := TTLDuration(cfg.Quiz.TTL, time.Hour); got != 48*time.Hour {
		t.Fatalf("expected 48h ttl, got %v", got)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("SHEETS_PATH", "quiz.xlsx")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if cfg.Sheets.Path != "quiz.xlsx" {
		t.Fatalf("expected sheets path from env, got %q", cfg.Sheets.Path)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("empty should fall back, got %v", got)
	}
	if got := TTLDuration("soon", time.Minute); got != time.Minute {
		t.Fatalf("invalid should fall back, got %v", got)
	}
}
