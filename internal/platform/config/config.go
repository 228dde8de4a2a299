package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	Environment   string
	JWTSigningKey string

	DatabaseURL string
	RedisURL    string

	KafkaBrokers    string
	AuditTopic      string
	AuditAsyncDepth int

	ConsentTTL       time.Duration
	ContractCacheTTL time.Duration
	ThrottleWindow   time.Duration
}

// Defaults applied when the environment does not override them.
var (
	DefaultConsentTTL       = 365 * 24 * time.Hour // 1 year
	DefaultContractCacheTTL = 5 * time.Minute      // contract reads are remote; keep retention short
	DefaultThrottleWindow   = 10 * time.Minute
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:             getEnv("CONSENTFLOW_ADDR", ":8080"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		KafkaBrokers:     os.Getenv("KAFKA_BROKERS"),
		AuditTopic:       getEnv("AUDIT_TOPIC", "consentflow.audit"),
		AuditAsyncDepth:  getEnvInt("AUDIT_ASYNC_DEPTH", 256),
		ConsentTTL:       getEnvDuration("CONSENT_TTL", DefaultConsentTTL),
		ContractCacheTTL: getEnvDuration("CONTRACT_CACHE_TTL", DefaultContractCacheTTL),
		ThrottleWindow:   getEnvDuration("THROTTLE_WINDOW", DefaultThrottleWindow),
	}

	cfg.JWTSigningKey = os.Getenv("JWT_SIGNING_KEY")
	if cfg.JWTSigningKey == "" {
		// Use a default for development - should be overridden in production
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
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
