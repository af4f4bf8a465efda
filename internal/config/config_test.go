package config

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearClientEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"ENVIRONMENT", "BIOLINK_API_ENDPOINT", "BIOLINK_STORAGE", "BIOLINK_STORAGE_PATH",
		"REDIS_URL", "BIOLINK_CACHE_TTL", "BIOLINK_REQUEST_TIMEOUT", "BIOLINK_IDENTITY_RPS",
		"BIOLINK_LOG_FILE", "OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadEnvironmentVariables_Defaults(t *testing.T) {
	clearClientEnv(t)

	cfg, err := LoadEnvironmentVariables()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "http://localhost:8080", cfg.APIEndpoint)
	assert.Equal(t, "file", cfg.StorageBackend)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Zero(t, cfg.IdentityRPS)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "biolink-client", cfg.Telemetry.ServiceName)
}

func TestLoadEnvironmentVariables_Overrides(t *testing.T) {
	clearClientEnv(t)
	t.Setenv("BIOLINK_API_ENDPOINT", "https://id.example.com/")
	t.Setenv("BIOLINK_STORAGE", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("BIOLINK_CACHE_TTL", "90s")
	t.Setenv("BIOLINK_REQUEST_TIMEOUT", "2s")
	t.Setenv("BIOLINK_IDENTITY_RPS", "2.5")
	t.Setenv("BIOLINK_LOG_FILE", "/tmp/biolink.log")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")

	cfg, err := LoadEnvironmentVariables()
	require.NoError(t, err)

	assert.Equal(t, "https://id.example.com", cfg.APIEndpoint)
	assert.Equal(t, "redis", cfg.StorageBackend)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2.5, cfg.IdentityRPS)
	assert.Equal(t, "/tmp/biolink.log", cfg.LogFile)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "localhost:4318", cfg.Telemetry.Endpoint)
}

func TestLoadEnvironmentVariables_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown storage":   {"BIOLINK_STORAGE": "s3"},
		"redis without url": {"BIOLINK_STORAGE": "redis"},
		"bad ttl":           {"BIOLINK_CACHE_TTL": "five minutes"},
		"negative timeout":  {"BIOLINK_REQUEST_TIMEOUT": "-1s"},
		"negative rps":      {"BIOLINK_IDENTITY_RPS": "-3"},
		"non numeric rps":   {"BIOLINK_IDENTITY_RPS": "fast"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearClientEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}

			_, err := LoadEnvironmentVariables()
			assert.Error(t, err)
		})
	}
}

func TestLoadStubEnvironmentVariables(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SESSION_SECRET", "")
	_, err := LoadStubEnvironmentVariables()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "jwt")
	_, err = LoadStubEnvironmentVariables()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")

	t.Setenv("SESSION_SECRET", "session")
	t.Setenv("PORT", "")
	t.Setenv("STUB_RATE_LIMIT", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.test , ,http://b.test")

	cfg, err := LoadStubEnvironmentVariables()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "30-M", cfg.RateLimit)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestParseLoginFlags(t *testing.T) {
	flags, err := ParseLoginFlags([]string{"-email", " ada@example.com ", "-password", "pw", "-name", "Ada"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, LoginFlags{Email: "ada@example.com", Password: "pw", DisplayName: "Ada"}, flags)

	_, err = ParseLoginFlags([]string{"-email", "ada@example.com"}, io.Discard)
	assert.Error(t, err)

	_, err = ParseLoginFlags([]string{"-bogus"}, io.Discard)
	assert.Error(t, err)
}

func TestParseNoFlags(t *testing.T) {
	assert.NoError(t, ParseNoFlags("status", nil, io.Discard))
	assert.Error(t, ParseNoFlags("status", []string{"extra"}, io.Discard))
}
