package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("VERIFICATION_API_TOKEN", "")
	t.Setenv("KYC_VALIDITY_DAYS", "")

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 365*24*time.Hour, cfg.KYC.ValidityWindow)
	assert.False(t, cfg.KYC.AllowManualExpired)
	assert.Equal(t, 30*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, "https://api.onfido.com/v3", cfg.Provider.BaseURL)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("KYC_VALIDITY_DAYS", "30")
	t.Setenv("KYC_ALLOW_MANUAL_EXPIRED", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("PROVIDER_TIMEOUT", "5s")
	t.Setenv("KYC_BATCH_CONCURRENCY", "not-a-number")

	cfg := FromEnv()

	assert.Equal(t, 30*24*time.Hour, cfg.KYC.ValidityWindow)
	assert.True(t, cfg.KYC.AllowManualExpired)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 4, cfg.KYC.BatchConcurrency)
}
