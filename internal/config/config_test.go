package config

import (
	"strings"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("PORT", "")
	t.Setenv("TOKEN_TTL_HOURS", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := FromEnv()
	if cfg.DBName != "cyclestore" {
		t.Fatalf("expected default db name, got %q", cfg.DBName)
	}
	if cfg.Port != "9000" {
		t.Fatalf("expected default port 9000, got %q", cfg.Port)
	}
	if cfg.TokenTTL != 0 {
		t.Fatalf("expected tokens without expiry by default, got %v", cfg.TokenTTL)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("expected wildcard cors origin, got %v", cfg.CORSOrigins)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TOKEN_TTL_HOURS", "12")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")

	cfg := FromEnv()
	if cfg.TokenTTL != 12*time.Hour {
		t.Fatalf("expected 12h ttl, got %v", cfg.TokenTTL)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("expected 3s shutdown timeout, got %v", cfg.ShutdownTimeout)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSOrigins)
	}
}

func TestGetDurationEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("TOKEN_TTL_HOURS", "soon")
	if got := getDurationEnv("TOKEN_TTL_HOURS", 5, time.Hour); got != 5*time.Hour {
		t.Fatalf("expected fallback to default, got %v", got)
	}
	t.Setenv("TOKEN_TTL_HOURS", "-1")
	if got := getDurationEnv("TOKEN_TTL_HOURS", 5, time.Hour); got != 5*time.Hour {
		t.Fatalf("expected fallback for negative value, got %v", got)
	}
}

func TestValidateRequiresSecretAndURI(t *testing.T) {
	err := Config{}.Validate()
	if err == nil {
		t.Fatal("expected validation error for empty config")
	}
	if !strings.Contains(err.Error(), "MONGO_URI") || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected both keys named, got %v", err)
	}
	if err := (Config{MongoURI: "mongodb://x", JWTSecret: "s"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
