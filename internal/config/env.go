package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// loads client configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		Environment:    envOr("ENVIRONMENT", defaultEnvironment),
		APIEndpoint:    strings.TrimRight(envOr("BIOLINK_API_ENDPOINT", defaultAPIEndpoint), "/"),
		StorageBackend: strings.ToLower(envOr("BIOLINK_STORAGE", defaultStorageBackend)),
		StoragePath:    os.Getenv("BIOLINK_STORAGE_PATH"),
		RedisURL:       os.Getenv("REDIS_URL"),
		LogFile:        os.Getenv("BIOLINK_LOG_FILE"),
	}

	var err error

	if cfg.CacheTTL, err = durationEnv("BIOLINK_CACHE_TTL", defaultCacheTTL); err != nil {
		return nil, err
	}

	if cfg.RequestTimeout, err = durationEnv("BIOLINK_REQUEST_TIMEOUT", defaultRequestTimeout); err != nil {
		return nil, err
	}

	if raw := os.Getenv("BIOLINK_IDENTITY_RPS"); raw != "" {
		cfg.IdentityRPS, err = strconv.ParseFloat(raw, 64)
		if err != nil || cfg.IdentityRPS < 0 {
			return nil, fmt.Errorf("BIOLINK_IDENTITY_RPS must be a non-negative number, got %q", raw)
		}
	}

	switch cfg.StorageBackend {
	case "file", "memory":
	case "redis":
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL environment variable is required for redis storage")
		}
	default:
		return nil, fmt.Errorf("BIOLINK_STORAGE must be file, memory or redis, got %q", cfg.StorageBackend)
	}

	if cfg.LogFile == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			cfg.LogFile = filepath.Join(dir, "biolink", "biolink.log")
		}
	}

	cfg.Telemetry = loadTelemetry(defaultServiceName)

	return cfg, nil
}

// loads identity stub configuration from environment variables
func LoadStubEnvironmentVariables() (*StubConfig, error) {
	loadDotEnv()

	jwtSecret := os.Getenv("JWT_SECRET")
	sessionSecret := os.Getenv("SESSION_SECRET")

	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if sessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable is required")
	}

	var origins []string
	for _, origin := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}

	return &StubConfig{
		Environment:    envOr("ENVIRONMENT", defaultEnvironment),
		Port:           envOr("PORT", defaultStubPort),
		JWTSecret:      jwtSecret,
		SessionSecret:  sessionSecret,
		RateLimit:      envOr("STUB_RATE_LIMIT", defaultStubRateLimit),
		AllowedOrigins: origins,
		Telemetry:      loadTelemetry("biolink-identity-stub"),
	}, nil
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}
}

func loadTelemetry(service string) TelemetryConfig {
	enabled, _ := strconv.ParseBool(os.Getenv("OTEL_ENABLED")) //nolint:errcheck // unset means disabled

	return TelemetryConfig{
		Enabled:     enabled,
		Endpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceName: envOr("OTEL_SERVICE_NAME", service),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, raw)
	}

	return d, nil
}
