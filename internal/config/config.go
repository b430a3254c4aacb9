package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration for bankdash and devbank.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Logging
	LogLevel string
	LogFile  string // empty = stderr

	// Banking service
	BankAPIURL string

	// HTTP client
	HTTPTimeout time.Duration

	// Circuit breaker
	BreakerMaxRequests  int
	BreakerInterval     time.Duration
	BreakerOpenTimeout  time.Duration
	BreakerMinRequests  int
	BreakerFailureRatio float64

	// Credentials
	CredentialsFile string // empty = in-memory only

	// Ops server (health + metrics); empty disables it
	OpsAddr string

	// Observability; empty disables tracing
	OTLPEndpoint string

	// devbank
	DevbankPort int
	JWTSecret   string
	JWTTTL      time.Duration
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		BankAPIURL: getEnv("BANK_API_URL", "http://localhost:5000/api"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		BreakerMaxRequests:  getEnvInt("CB_MAX_REQUESTS", 3),
		BreakerInterval:     getEnvDuration("CB_INTERVAL", 30*time.Second),
		BreakerOpenTimeout:  getEnvDuration("CB_OPEN_TIMEOUT", 10*time.Second),
		BreakerMinRequests:  getEnvInt("CB_MIN_REQUESTS", 5),
		BreakerFailureRatio: getEnvFloat("CB_FAILURE_RATIO", 0.6),

		CredentialsFile: getEnv("CREDENTIALS_FILE", ""),

		OpsAddr: getEnv("OPS_ADDR", ""),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		DevbankPort: getEnvInt("DEVBANK_PORT", 5000),
		JWTSecret:   getEnv("JWT_SECRET", "devbank-default-dev-secret-change-me"),
		JWTTTL:      getEnvDuration("JWT_TTL", 1*time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
