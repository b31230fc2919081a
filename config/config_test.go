package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlock/payment-eventstore-go/config"
)

func Test_Load_When_EnvironmentIsEmpty_Then_DefaultsApply(t *testing.T) {
	// act
	cfg, err := config.Load()

	// assert
	require.NoError(t, err)
	assert.Equal(t, "payment_events", cfg.EventTableName)
	assert.Equal(t, "payment-events", cfg.KafkaTopic)
	assert.Equal(t, 100, cfg.PublishCapacity)
	assert.Equal(t, 3, cfg.PublishMaxRetries)
	assert.Empty(t, cfg.KafkaBrokers)
}

func Test_Load_When_EnvironmentOverridesDefaults(t *testing.T) {
	// arrange
	t.Setenv("PAYMENTS_EVENT_TABLE", "payment_events_v2")
	t.Setenv("PAYMENTS_KAFKA_BROKERS", "broker-1:9092,broker-2:9092")
	t.Setenv("PAYMENTS_PUBLISH_CAPACITY", "25")

	// act
	cfg, err := config.Load()

	// assert
	require.NoError(t, err)
	assert.Equal(t, "payment_events_v2", cfg.EventTableName)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 25, cfg.PublishCapacity)
}

func Test_Load_When_CapacityIsNotNumeric_Then_ErrorIsReturned(t *testing.T) {
	// arrange
	t.Setenv("PAYMENTS_PUBLISH_CAPACITY", "plenty")

	// act
	_, err := config.Load()

	// assert
	require.Error(t, err)
}
