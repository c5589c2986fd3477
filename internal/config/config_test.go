package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigYAMLAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
database:
  host: db.internal
jwt:
  secret: from-file
cache:
  ttl: 120s
`)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("port = %q", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Fatalf("host = %q", cfg.Database.Host)
	}
	if cfg.JWT.Secret != "from-env" {
		t.Fatalf("env should override file, got %q", cfg.JWT.Secret)
	}
	if cfg.Redis.DB != 3 {
		t.Fatalf("redis db = %d", cfg.Redis.DB)
	}
	if cfg.RateLimit.RequestsPerSecond != 2.5 {
		t.Fatalf("rps = %v", cfg.RateLimit.RequestsPerSecond)
	}
	if got := Duration(cfg.Cache.TTL, time.Minute); got != 120*time.Second {
		t.Fatalf("cache ttl = %v", got)
	}
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	path := writeConfig(t, "database:\n  host: localhost\n")
	t.Setenv("JWT_SECRET", "")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for empty JWT secret")
	}
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: s\ncache:\n  ttl: soon\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for malformed cache ttl")
	}
}

func TestOrigins(t *testing.T) {
	cfg := &Config{}
	cfg.Server.AllowedOrigins = "https://a.example, https://b.example,,"
	got := cfg.Origins()
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("origins = %v", got)
	}
}
