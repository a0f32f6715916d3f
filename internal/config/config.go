package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates runtime configuration for the Syndicate web API.
type Config struct {
	Environment    string
	HTTPPort       int
	SiteURL        string
	LogLevel       string
	AllowedOrigins []string

	DiscordClientID     string
	DiscordClientSecret string
	DiscordRedirectURI  string
	SessionSecret       string
	SessionTTL          time.Duration

	DataStore   string
	DatabaseURL string
}

// Load reads configuration from environment variables with sensible defaults
// for local development. Missing OAuth or database values are not fatal here:
// the affected endpoints report them as 500s at request time, so the rest of
// the API stays up with partial configuration.
func Load() (Config, error) {
	clientSecret, err := getEnvOrFile("DISCORD_CLIENT_SECRET", "/run/secrets/syndicate_discord_client_secret")
	if err != nil {
		return Config{}, err
	}

	sessionSecret, err := getEnvOrFile("AUTH_SESSION_SECRET", "/run/secrets/syndicate_session_secret")
	if err != nil {
		return Config{}, err
	}

	databaseURL, err := getEnvOrFile("DATABASE_URL", "/run/secrets/syndicate_database_url")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Environment:         getEnv("APP_ENV", "development"),
		SiteURL:             strings.TrimSuffix(strings.TrimSpace(getEnv("SITE_URL", "")), "/"),
		LogLevel:            strings.ToLower(getEnv("LOG_LEVEL", "info")),
		AllowedOrigins:      parseCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:4200,http://localhost:8080")),
		DiscordClientID:     strings.TrimSpace(getEnv("DISCORD_CLIENT_ID", "")),
		DiscordClientSecret: strings.TrimSpace(clientSecret),
		DiscordRedirectURI:  strings.TrimSpace(getEnv("DISCORD_REDIRECT_URI", "")),
		SessionSecret:       strings.TrimSpace(sessionSecret),
		DataStore:           strings.ToLower(getEnv("DATA_STORE", "postgres")),
		DatabaseURL:         databaseURL,
	}

	portValue := getEnv("PORT", getEnv("HTTP_PORT", "8080"))
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return Config{}, fmt.Errorf("invalid port %q: %w", portValue, err)
	}
	cfg.HTTPPort = port

	ttlValue := getEnv("SESSION_TTL_HOURS", "168")
	ttlHours, err := strconv.Atoi(ttlValue)
	if err != nil || ttlHours <= 0 {
		return Config{}, fmt.Errorf("invalid SESSION_TTL_HOURS %q", ttlValue)
	}
	cfg.SessionTTL = time.Duration(ttlHours) * time.Hour

	return cfg, nil
}

// HTTPAddress returns the address the HTTP server should bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// UseInMemoryStore returns true if the in-memory stats repository should be used.
func (c Config) UseInMemoryStore() bool {
	return c.DataStore == "memory"
}

// IsDevelopment reports whether the app runs in the development environment.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// HasDiscordOAuth reports whether the Discord OAuth credentials needed by the
// login endpoints are configured.
func (c Config) HasDiscordOAuth() bool {
	return c.DiscordClientID != "" && c.DiscordClientSecret != "" && c.DiscordRedirectURI != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvOrFile(key, defaultPath string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}

	fileKey := key + "_FILE"
	if path := os.Getenv(fileKey); path != "" {
		return readSecret(path, fileKey)
	}

	if defaultPath != "" {
		return readSecret(defaultPath, key)
	}

	return "", nil
}

func readSecret(path, name string) (string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("config: reading %s (%s): %w", name, path, err)
	}

	value := strings.TrimSpace(string(contents))
	if value == "" {
		return "", fmt.Errorf("config: %s (%s) is empty", name, path)
	}
	return value, nil
}
