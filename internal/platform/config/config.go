package config

import (
	"os"
	"strings"
	"time"
)

// Config captures everything main needs to wire the process.
type Config struct {
	Addr          string
	DatabaseURL   string
	RedisURL      string
	KafkaBrokers  []string
	AuditTopic    string
	JWTSigningKey string
	JWTIssuer     string
}

// TemplateCacheTTL bounds how long resolved template snapshots may be served
// from redis.
var TemplateCacheTTL = 5 * time.Minute

// FromEnv builds a Config from environment variables so main stays lean.
// RedisURL and KafkaBrokers are optional; the process degrades to uncached
// catalog reads and outbox-only auditing without them.
func FromEnv() Config {
	cfg := Config{
		Addr:          getenv("VIGIL_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("VIGIL_DATABASE_URL"),
		RedisURL:      os.Getenv("VIGIL_REDIS_URL"),
		AuditTopic:    getenv("VIGIL_AUDIT_TOPIC", "vigil.audit.events"),
		JWTSigningKey: getenv("VIGIL_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:     getenv("VIGIL_JWT_ISSUER", "vigil"),
	}
	for _, broker := range strings.Split(os.Getenv("VIGIL_KAFKA_BROKERS"), ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
