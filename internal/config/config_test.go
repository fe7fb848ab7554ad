package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != "8090" {
		t.Errorf("Port = %q, want 8090", cfg.Server.Port)
	}
	if cfg.API.BaseURL != "http://localhost:4000/api" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.GetTimeout() != 30*time.Second {
		t.Errorf("GetTimeout = %v, want 30s", cfg.API.GetTimeout())
	}
	if cfg.Session.Backend != "memory" {
		t.Errorf("Backend = %q, want memory", cfg.Session.Backend)
	}
	if cfg.Session.CookieName != "bl_session" {
		t.Errorf("CookieName = %q", cfg.Session.CookieName)
	}
	if cfg.Session.GetTTL() != 24*time.Hour {
		t.Errorf("GetTTL = %v, want 24h", cfg.Session.GetTTL())
	}
	if cfg.Session.GetCacheTTL() != 5*time.Minute {
		t.Errorf("GetCacheTTL = %v, want 5m", cfg.Session.GetCacheTTL())
	}
	if !cfg.Login.RateLimitEnabled || cfg.Login.AttemptsPerMinute != 10 {
		t.Errorf("Login = %+v", cfg.Login)
	}
}

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/console.yaml")
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Server.Port != "8090" {
		t.Errorf("Port = %q, want default", cfg.Server.Port)
	}
}

func TestLoadConfig_OverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.yaml")
	content := `
server:
  port: "9999"
api:
  base_url: "https://api.example.com/v1"
session:
  backend: "redis"
  redis:
    addr: "redis.internal:6379"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != "9999" {
		t.Errorf("Port = %q, want 9999", cfg.Server.Port)
	}
	if cfg.API.BaseURL != "https://api.example.com/v1" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Session.Backend != "redis" {
		t.Errorf("Backend = %q, want redis", cfg.Session.Backend)
	}
	if cfg.Session.Redis.Addr != "redis.internal:6379" {
		t.Errorf("Redis.Addr = %q", cfg.Session.Redis.Addr)
	}

	// Untouched sections keep their defaults
	if cfg.Session.CookieName != "bl_session" {
		t.Errorf("CookieName = %q, want default", cfg.Session.CookieName)
	}
	if cfg.API.TimeoutSeconds != 30 {
		t.Errorf("TimeoutSeconds = %d, want default 30", cfg.API.TimeoutSeconds)
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("malformed YAML should error")
	}
}
