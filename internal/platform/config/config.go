package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends selectable via INTAKE_STORE_BACKEND.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Server captures process-level configuration for the intake service.
type Server struct {
	Addr          string
	StoreBackend  string
	Redis         Redis
	PostgresDSN   string
	JWTSigningKey string
	AdminUsername string
	AdminPassword string
	TokenTTL      time.Duration
	Email         Email
	Kafka         Kafka
}

// Redis holds connection settings for the Redis-backed document store.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Email holds SendGrid settings for the confirmation mail. An empty APIKey
// disables sending.
type Email struct {
	APIKey string
	From   string
}

// Kafka holds audit publishing settings. Empty Brokers disables Kafka and the
// service falls back to log-only audit events.
type Kafka struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("INTAKE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	backend := os.Getenv("INTAKE_STORE_BACKEND")
	if backend == "" {
		backend = StoreMemory
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	adminUser := os.Getenv("INTAKE_ADMIN_USERNAME")
	if adminUser == "" {
		adminUser = "admin"
	}
	adminPass := os.Getenv("INTAKE_ADMIN_PASSWORD")
	if adminPass == "" {
		adminPass = "admin@123"
	}

	from := os.Getenv("INTAKE_EMAIL_FROM")
	if from == "" {
		from = "register@egxmoneymadesimplebyccg.com"
	}

	topic := os.Getenv("INTAKE_AUDIT_TOPIC")
	if topic == "" {
		topic = "intake.audit"
	}

	return Server{
		Addr:          addr,
		StoreBackend:  backend,
		Redis:         redisFromEnv(),
		PostgresDSN:   os.Getenv("INTAKE_POSTGRES_DSN"),
		JWTSigningKey: jwtSigningKey,
		AdminUsername: adminUser,
		AdminPassword: adminPass,
		TokenTTL:      durationEnv("INTAKE_TOKEN_TTL", time.Hour),
		Email: Email{
			APIKey: os.Getenv("SENDGRID_API_KEY"),
			From:   from,
		},
		Kafka: Kafka{
			Brokers: splitEnv("INTAKE_KAFKA_BROKERS"),
			Topic:   topic,
		},
	}
}

func redisFromEnv() Redis {
	return Redis{
		URL:          os.Getenv("INTAKE_REDIS_URL"),
		PoolSize:     intEnv("INTAKE_REDIS_POOL_SIZE", 10),
		MinIdleConns: intEnv("INTAKE_REDIS_MIN_IDLE_CONNS", 2),
		DialTimeout:  durationEnv("INTAKE_REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  durationEnv("INTAKE_REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: durationEnv("INTAKE_REDIS_WRITE_TIMEOUT", 3*time.Second),
	}
}

func intEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitEnv(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
