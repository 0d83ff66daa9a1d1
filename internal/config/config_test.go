package config

import (
	"log/slog"
	"slices"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if !slices.Equal(cfg.Sessions, []string{"main"}) {
		t.Errorf("Sessions = %v, want [main]", cfg.Sessions)
	}
	if cfg.SSEKeepAlive != 15*time.Second {
		t.Errorf("SSEKeepAlive = %s, want 15s", cfg.SSEKeepAlive)
	}
	if cfg.SubscriberBuffer != 64 {
		t.Errorf("SubscriberBuffer = %d, want 64", cfg.SubscriberBuffer)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want INFO", cfg.LogLevel)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SESSIONS", "main,finals")
	t.Setenv("SSE_KEEPALIVE", "5s")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !slices.Equal(cfg.Sessions, []string{"main", "finals"}) {
		t.Errorf("Sessions = %v, want [main finals]", cfg.Sessions)
	}
	if cfg.SSEKeepAlive != 5*time.Second {
		t.Errorf("SSEKeepAlive = %s, want 5s", cfg.SSEKeepAlive)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want DEBUG", cfg.LogLevel)
	}
	if len(cfg.CORSOrigins) != 1 {
		t.Errorf("CORSOrigins = %v, want one origin", cfg.CORSOrigins)
	}
}

func TestLoadRejectsBadKeepAlive(t *testing.T) {
	t.Setenv("SSE_KEEPALIVE", "0s")

	if _, err := Load(); err == nil {
		t.Error("Load accepted a zero keep-alive")
	}
}
