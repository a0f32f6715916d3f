package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("SITE_URL", "")
	t.Setenv("DISCORD_CLIENT_ID", "")
	t.Setenv("DISCORD_CLIENT_SECRET", "x")
	t.Setenv("AUTH_SESSION_SECRET", "x")
	t.Setenv("DATABASE_URL", "x")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Environment != "development" {
		t.Fatalf("expected development environment, got %q", cfg.Environment)
	}
	if cfg.HTTPPort != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.HTTPPort)
	}
	if cfg.SessionTTL != 168*time.Hour {
		t.Fatalf("expected 7 day session TTL, got %s", cfg.SessionTTL)
	}
	if cfg.HasDiscordOAuth() {
		t.Fatal("expected OAuth to be unconfigured")
	}
}

func TestLoadAllowsMissingOAuthConfig(t *testing.T) {
	// Missing credentials degrade to request-time 500s on the affected
	// endpoints rather than preventing startup.
	t.Setenv("DISCORD_CLIENT_ID", "")
	t.Setenv("DISCORD_CLIENT_SECRET", "")
	t.Setenv("DISCORD_REDIRECT_URI", "")
	t.Setenv("AUTH_SESSION_SECRET", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATA_STORE", "memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.HasDiscordOAuth() {
		t.Fatal("expected HasDiscordOAuth to be false")
	}
	if !cfg.UseInMemoryStore() {
		t.Fatal("expected in-memory store")
	}
}

func TestLoadTrimsSiteURLTrailingSlash(t *testing.T) {
	t.Setenv("SITE_URL", "https://syndicate.example.com/")
	t.Setenv("DISCORD_CLIENT_SECRET", "x")
	t.Setenv("AUTH_SESSION_SECRET", "x")
	t.Setenv("DATABASE_URL", "x")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.SiteURL != "https://syndicate.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.SiteURL)
	}
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("DISCORD_CLIENT_SECRET", "x")
	t.Setenv("AUTH_SESSION_SECRET", "x")
	t.Setenv("DATABASE_URL", "x")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestLoadRejectsInvalidSessionTTL(t *testing.T) {
	t.Setenv("SESSION_TTL_HOURS", "0")
	t.Setenv("DISCORD_CLIENT_SECRET", "x")
	t.Setenv("AUTH_SESSION_SECRET", "x")
	t.Setenv("DATABASE_URL", "x")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-positive session TTL")
	}
}
