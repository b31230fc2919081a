// Package config loads runtime configuration from environment variables.
package config

import (
	"github.com/caarlos0/env/v11"
)

// Config carries the settings of the event store, the Kafka fan-out, and
// the publisher admission control.
type Config struct {
	PostgresDSN        string   `env:"PAYMENTS_POSTGRES_DSN" envDefault:"postgres://localhost:5432/payments?sslmode=disable"`
	PostgresReplicaDSN string   `env:"PAYMENTS_POSTGRES_REPLICA_DSN"`
	EventTableName     string   `env:"PAYMENTS_EVENT_TABLE" envDefault:"payment_events"`
	KafkaBrokers       []string `env:"PAYMENTS_KAFKA_BROKERS" envSeparator:","`
	KafkaTopic         string   `env:"PAYMENTS_KAFKA_TOPIC" envDefault:"payment-events"`
	PublishCapacity    int      `env:"PAYMENTS_PUBLISH_CAPACITY" envDefault:"100"`
	PublishMaxRetries  int      `env:"PAYMENTS_PUBLISH_MAX_RETRIES" envDefault:"3"`
}

// Load parses the configuration from the process environment.
func Load() (Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
