package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 2, cfg.Provider.RequestsPerSecond)
	assert.Equal(t, float64(80), cfg.Provider.ConfidenceThreshold)
	assert.Equal(t, 5, cfg.Lifecycle.RetryLimit)
	assert.Equal(t, 24*time.Hour, cfg.Lifecycle.StaleThreshold)
	assert.Equal(t, "@every 2s", cfg.Schedule.ProcessApplicants)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("KYC_API_REQ_PER_SEC", "7")
	t.Setenv("KYC_RESET_RECORD_THRESHOLD", "90m")
	t.Setenv("KYC_CONFIDENCE_THRESHOLD", "72.5")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092,broker-1:9092,")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Provider.RequestsPerSecond)
	assert.Equal(t, 90*time.Minute, cfg.Lifecycle.StaleThreshold)
	assert.Equal(t, 72.5, cfg.Provider.ConfidenceThreshold)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
}

func TestFromEnvInvalid(t *testing.T) {
	t.Run("unparseable duration", func(t *testing.T) {
		t.Setenv("WHITELIST_RESET_RECORD_THRESHOLD", "soon")
		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "WHITELIST_RESET_RECORD_THRESHOLD")
	})

	t.Run("non positive rate", func(t *testing.T) {
		t.Setenv("KYC_API_REQ_PER_SEC", "0")
		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "KYC_API_REQ_PER_SEC must be positive")
	})

	t.Run("zero whitelist retry count", func(t *testing.T) {
		t.Setenv("WHITELIST_BUFFER_RETRY_COUNT", "0")
		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "WHITELIST_BUFFER_RETRY_COUNT must be positive")
	})
}
