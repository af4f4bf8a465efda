package config

import "time"

const (
	defaultEnvironment    = "development"
	defaultAPIEndpoint    = "http://localhost:8080"
	defaultStorageBackend = "file"
	defaultCacheTTL       = 5 * time.Minute
	defaultRequestTimeout = 10 * time.Second
	defaultServiceName    = "biolink-client"

	defaultStubPort      = "8080"
	defaultStubRateLimit = "30-M"
)

// client configuration
type Config struct {
	Environment    string
	APIEndpoint    string
	StorageBackend string
	StoragePath    string
	RedisURL       string
	CacheTTL       time.Duration
	RequestTimeout time.Duration
	IdentityRPS    float64
	LogFile        string
	Telemetry      TelemetryConfig
}

type TelemetryConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

// identity stub configuration
type StubConfig struct {
	Environment    string
	Port           string
	JWTSecret      string
	SessionSecret  string
	RateLimit      string
	AllowedOrigins []string
	Telemetry      TelemetryConfig
}

type LoginFlags struct {
	Email       string
	Password    string
	DisplayName string
}
