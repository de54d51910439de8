package config

import (
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("API_PORT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("SCOPE_LIST_DEFAULT_LIMIT", "")
	t.Setenv("BREAKER_OPEN_TIMEOUT_SECONDS", "")

	cfg := Load()
	if cfg.APIPort != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.APIPort)
	}
	if cfg.GeminiModel != "gemini-1.5-flash" {
		t.Fatalf("expected default model, got %q", cfg.GeminiModel)
	}
	if cfg.ScopeListDefaultLimit != 50 {
		t.Fatalf("expected default list limit 50, got %d", cfg.ScopeListDefaultLimit)
	}
	if cfg.BreakerOpenTimeout != 30*time.Second {
		t.Fatalf("expected default breaker timeout 30s, got %v", cfg.BreakerOpenTimeout)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9000")
	t.Setenv("GEMINI_MODEL", "gemini-flash-latest")
	t.Setenv("SCOPE_LIST_DEFAULT_LIMIT", "20")
	t.Setenv("BREAKER_FAILURE_RATIO", "0.75")

	cfg := Load()
	if cfg.APIPort != "9000" {
		t.Fatalf("expected port override, got %q", cfg.APIPort)
	}
	if cfg.GeminiModel != "gemini-flash-latest" {
		t.Fatalf("expected model override, got %q", cfg.GeminiModel)
	}
	if cfg.ScopeListDefaultLimit != 20 {
		t.Fatalf("expected list limit 20, got %d", cfg.ScopeListDefaultLimit)
	}
	if cfg.BreakerFailureRatio != 0.75 {
		t.Fatalf("expected failure ratio 0.75, got %v", cfg.BreakerFailureRatio)
	}
}

func TestLoadFallsBackOnGarbageInt(t *testing.T) {
	t.Setenv("SCOPE_LIST_DEFAULT_LIMIT", "not-a-number")

	cfg := Load()
	if cfg.ScopeListDefaultLimit != 50 {
		t.Fatalf("expected fallback for unparsable int, got %d", cfg.ScopeListDefaultLimit)
	}
}
