package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
redis:
  addr: localhost:6379
  ttl: 30m
session:
  code_length: 6
  tick_interval: 1s
  latency: 300ms
simulate:
  enabled: true
  seed: 42
  max_students: 20
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Session.CodeLength != 6 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if !cfg.Simulate.Enabled || cfg.Simulate.Seed != 42 || cfg.Simulate.MaxStudents != 20 {
		t.Fatalf("unexpected simulate section %+v", cfg.Simulate)
	}
	if got := Duration(cfg.Session.Latency, 0); got != 300*time.Millisecond {
		t.Fatalf("expected 300ms latency, got %v", got)
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Redis.Addr != "" || cfg.Postgres.URL != "" {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_ = os.WriteFile(path, []byte("redis: [unclosed"), 0o600)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestDurationFallback(t *testing.T) {
	if got := Duration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for empty, got %v", got)
	}
	if got := Duration("soon", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for malformed, got %v", got)
	}
	if got := Duration("10m", time.Minute); got != 10*time.Minute {
		t.Fatalf("expected 10m, got %v", got)
	}
}
