package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_FeedRequiresTokenWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("FEED_ENABLED", "true")
	t.Setenv("FEED_API_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when FEED_ENABLED=true without FEED_API_TOKEN")
	}
}

func TestLoad_RedisRequiresAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDR", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when REDIS_ENABLED=true without REDIS_ADDR")
	}
}

func TestLoad_FeedConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("FEED_ENABLED", "true")
	t.Setenv("FEED_API_TOKEN", "token-123")
	t.Setenv("FEED_BASE_URL", "https://api.crickdata.io/v2")
	t.Setenv("FEED_TIMEOUT", "7s")
	t.Setenv("FEED_MAX_RETRIES", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.FeedEnabled {
		t.Fatalf("expected FeedEnabled=true")
	}
	if cfg.FeedBaseURL != "https://api.crickdata.io/v2" {
		t.Fatalf("unexpected FeedBaseURL: %q", cfg.FeedBaseURL)
	}
	if cfg.FeedToken != "token-123" {
		t.Fatalf("unexpected FeedToken")
	}
	if cfg.FeedTimeout != 7*time.Second {
		t.Fatalf("unexpected FeedTimeout: %s", cfg.FeedTimeout)
	}
	if cfg.FeedMaxRetries != 3 {
		t.Fatalf("unexpected FeedMaxRetries: %d", cfg.FeedMaxRetries)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.UndoGraceWindow != 10*time.Minute {
		t.Fatalf("unexpected UndoGraceWindow: %s", cfg.UndoGraceWindow)
	}
	if cfg.ScoringMaxWorkers != 8 {
		t.Fatalf("unexpected ScoringMaxWorkers: %d", cfg.ScoringMaxWorkers)
	}
	if cfg.CacheTTL != 60*time.Second {
		t.Fatalf("unexpected CacheTTL: %s", cfg.CacheTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected CORSAllowedOrigins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_InvalidDurations(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UNDO_GRACE_WINDOW", "-5m")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative UNDO_GRACE_WINDOW")
	}
}
