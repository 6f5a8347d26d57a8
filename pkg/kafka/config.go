package kafka

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const DefaultProducerBatchTimeout = 10 * time.Millisecond

var compressions = []string{"none", "gzip", "snappy", "lz4", "zstd"}

// Config tunes the booking event producer. Brokers come from the service
// configuration; everything else is read from KAFKA_PRODUCER_* variables.
type Config struct {
	Brokers []string `ignored:"true"`

	ProducerMaxAttempts  int           `envconfig:"MAX_ATTEMPTS" default:"3"`
	ProducerBatchTimeout time.Duration `envconfig:"BATCH_TIMEOUT" default:"10ms"`
	ProducerRequireAcks  int           `envconfig:"REQUIRE_ACKS" default:"-1"` // -1 all, 0 none, 1 leader
	ProducerCompression  string        `envconfig:"COMPRESSION" default:"snappy"`
	ProducerAsync        bool          `envconfig:"ASYNC" default:"false"`
}

func LoadConfig(brokers []string) (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("KAFKA_PRODUCER", cfg); err != nil {
		return nil, fmt.Errorf("failed to load kafka producer config: %w", err)
	}
	cfg.Brokers = brokers
	cfg.ProducerCompression = strings.ToLower(strings.TrimSpace(cfg.ProducerCompression))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	var problems []string

	if len(cfg.Brokers) == 0 {
		problems = append(problems, "At least one Kafka broker is required")
	}
	for i, broker := range cfg.Brokers {
		if broker == "" {
			problems = append(problems, fmt.Sprintf("Broker %d cannot be empty", i))
		}
	}
	if cfg.ProducerMaxAttempts <= 0 {
		problems = append(problems, fmt.Sprintf("ProducerMaxAttempts must be positive, got: %d", cfg.ProducerMaxAttempts))
	}
	if cfg.ProducerBatchTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("ProducerBatchTimeout must be positive, got: %s", cfg.ProducerBatchTimeout))
	}
	if !slices.Contains(compressions, cfg.ProducerCompression) {
		problems = append(problems, fmt.Sprintf("ProducerCompression must be one of %v, got: %s", compressions, cfg.ProducerCompression))
	}
	if cfg.ProducerRequireAcks < -1 || cfg.ProducerRequireAcks > 1 {
		problems = append(problems, fmt.Sprintf("ProducerRequireAcks must be -1, 0, or 1, got: %d", cfg.ProducerRequireAcks))
	}

	if len(problems) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("Kafka configuration validation failed:\n")
	for i, p := range problems {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, p)
	}
	return fmt.Errorf("%s", b.String())
}
