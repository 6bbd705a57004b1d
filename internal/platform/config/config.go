package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"irdesk/pkg/platform/dedupe"
)

// Config captures everything main needs to wire the service.
type Config struct {
	Addr          string
	LogLevel      string
	JWTSigningKey string
	DatabaseURL   string
	AutoMigrate   bool
	Redis         RedisConfig
	Kafka         KafkaConfig
	Provider      ProviderConfig
	KYC           KYCConfig
}

// RedisConfig configures the per-investor lock backend.
// An empty URL selects the in-process locker.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit event stream.
// No brokers selects the log publisher.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// ProviderConfig configures the verification provider client.
// An empty APIToken selects the sandbox provider.
type ProviderConfig struct {
	BaseURL      string
	APIToken     string
	Referrer     string
	WebhookToken string
	Timeout      time.Duration
	RPS          float64
	Burst        int
}

type KYCConfig struct {
	ValidityWindow     time.Duration
	AllowManualExpired bool
	BatchConcurrency   int
	PollSchedule       string
	LockTTL            time.Duration
}

// DefaultValidityDays is how long an approved screening stays valid.
const DefaultValidityDays = 365

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Config{
		Addr:          getString("IRDESK_ADDR", ":8080"),
		LogLevel:      getString("LOG_LEVEL", "info"),
		JWTSigningKey: jwtSigningKey,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		AutoMigrate:   os.Getenv("DB_AUTO_MIGRATE") == "true",
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: dedupe.Trimmed(strings.Split(os.Getenv("KAFKA_BROKERS"), ",")),
			Topic:   getString("KAFKA_AUDIT_TOPIC", "irdesk.kyc.audit"),
		},
		Provider: ProviderConfig{
			BaseURL:      getString("VERIFICATION_API_URL", "https://api.onfido.com/v3"),
			APIToken:     os.Getenv("VERIFICATION_API_TOKEN"),
			Referrer:     getString("VERIFICATION_SDK_REFERRER", "*://*/*"),
			WebhookToken: os.Getenv("VERIFICATION_WEBHOOK_TOKEN"),
			Timeout:      getDuration("PROVIDER_TIMEOUT", 30*time.Second),
			RPS:          getFloat("PROVIDER_RPS", 5),
			Burst:        getInt("PROVIDER_BURST", 10),
		},
		KYC: KYCConfig{
			ValidityWindow:     time.Duration(getInt("KYC_VALIDITY_DAYS", DefaultValidityDays)) * 24 * time.Hour,
			AllowManualExpired: os.Getenv("KYC_ALLOW_MANUAL_EXPIRED") == "true",
			BatchConcurrency:   getInt("KYC_BATCH_CONCURRENCY", 4),
			PollSchedule:       getString("KYC_POLL_SCHEDULE", "@every 15m"),
			LockTTL:            getDuration("KYC_LOCK_TTL", 2*time.Minute),
		},
	}
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && v > 0 {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}
