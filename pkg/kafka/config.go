package kafka

import (
	"fmt"
	"time"
)

// ProducerOption configures Producer.
type ProducerOption func(*ProducerConfig)

// ProducerConfig holds producer configuration.
type ProducerConfig struct {
	Brokers         []string
	RequiredAcks    int
	Compression     string
	MaxAttempts     int
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	BatchSize       int
	BatchBytes      int
	BatchTimeout    time.Duration
	Async           bool
	HashByKey       bool
	AutoCreateTopic bool
	Writer          Writer
}

// DefaultProducerConfig favours durability: all replicas ack, keyed partitioning.
func DefaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		RequiredAcks: -1,
		Compression:  "gzip",
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
		BatchSize:    100,
		BatchBytes:   1 << 20,
		BatchTimeout: time.Second,
		HashByKey:    true,
	}
}

// Validate is called by NewProducer after options are applied.
func (c ProducerConfig) Validate() error {
	if c.Writer == nil && len(c.Brokers) == 0 {
		return fmt.Errorf("brokers are required")
	}
	switch c.RequiredAcks {
	case -1, 0, 1:
	default:
		return fmt.Errorf("required acks must be -1, 0 or 1, got %d", c.RequiredAcks)
	}
	switch c.Compression {
	case "gzip", "snappy", "lz4", "zstd":
	default:
		return fmt.Errorf("unsupported compression %q", c.Compression)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be >= 1")
	}
	return nil
}

func WithBrokers(brokers []string) ProducerOption {
	return func(c *ProducerConfig) { c.Brokers = brokers }
}

// WithCompression accepts gzip, snappy, lz4 or zstd.
func WithCompression(compression string) ProducerOption {
	return func(c *ProducerConfig) {
		if compression != "" {
			c.Compression = compression
		}
	}
}

// WithRequiredAcks sets required acknowledgements (-1 = all).
func WithRequiredAcks(acks int) ProducerOption {
	return func(c *ProducerConfig) { c.RequiredAcks = acks }
}

// WithMaxAttempts bounds the writer's own retries; zero keeps the default.
func WithMaxAttempts(n int) ProducerOption {
	return func(c *ProducerConfig) {
		if n > 0 {
			c.MaxAttempts = n
		}
	}
}

// WithBatching tunes writer batching. Zero values keep the defaults.
func WithBatching(size, bytes int, linger time.Duration) ProducerOption {
	return func(c *ProducerConfig) {
		if size > 0 {
			c.BatchSize = size
		}
		if bytes > 0 {
			c.BatchBytes = bytes
		}
		if linger > 0 {
			c.BatchTimeout = linger
		}
	}
}

func WithTimeouts(write, read time.Duration) ProducerOption {
	return func(c *ProducerConfig) {
		if write > 0 {
			c.WriteTimeout = write
		}
		if read > 0 {
			c.ReadTimeout = read
		}
	}
}

// WithAsync makes writes fire-and-forget; errors are then only visible in metrics.
func WithAsync(async bool) ProducerOption {
	return func(c *ProducerConfig) { c.Async = async }
}

// WithHashByKey routes every message of one asset to one partition.
func WithHashByKey(hash bool) ProducerOption {
	return func(c *ProducerConfig) { c.HashByKey = hash }
}

func WithAutoCreateTopic(enabled bool) ProducerOption {
	return func(c *ProducerConfig) { c.AutoCreateTopic = enabled }
}

// WithWriter injects a writer instead of dialing brokers; used by tests.
func WithWriter(w Writer) ProducerOption {
	return func(c *ProducerConfig) { c.Writer = w }
}
