package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port        string
	Environment string

	// Redis (session persistence)
	RedisURL string

	// CORS
	AllowedOrigins []string

	// Outbound requests to the storefront API
	RequestTimeout time.Duration
	RateLimitRPS   float64

	// Import pipeline
	DefaultBatchSize int
	MaxBatchSize     int

	// Whether key-pair consumer secrets are written to durable storage.
	// Bearer tokens are never persisted regardless of this setting.
	PersistKeyPairSecrets bool
}

func Load() *Config {
	timeoutSec, _ := strconv.Atoi(getEnv("REQUEST_TIMEOUT_SECONDS", "30"))
	rps, _ := strconv.ParseFloat(getEnv("STORE_API_RATE_LIMIT_RPS", "4"), 64)
	defaultBatchSize, _ := strconv.Atoi(getEnv("IMPORT_BATCH_SIZE", "5"))
	maxBatchSize, _ := strconv.Atoi(getEnv("IMPORT_MAX_BATCH_SIZE", "50"))
	persistSecrets, _ := strconv.ParseBool(getEnv("PERSIST_KEYPAIR_SECRETS", "true"))

	return &Config{
		Port:        getEnv("PORT", "8093"),
		Environment: getEnv("ENVIRONMENT", "development"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),

		RequestTimeout: time.Duration(timeoutSec) * time.Second,
		RateLimitRPS:   rps,

		DefaultBatchSize: defaultBatchSize,
		MaxBatchSize:     maxBatchSize,

		PersistKeyPairSecrets: persistSecrets,
	}
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
