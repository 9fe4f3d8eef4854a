package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *memWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *memWriter) Close() error { return nil }

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)
}

func TestPublishEncodesValues(t *testing.T) {
	w := &memWriter{}
	p, err := NewProducer(WithWriter(w))
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), "signals", []byte("PKM-001"), map[string]int{"n": 1}))
	require.NoError(t, p.PublishBatch(context.Background(), "signals", []Message{
		{Key: []byte("a"), Value: "plain"},
		{Key: []byte("b"), Value: []byte("raw")},
	}))
	require.NoError(t, p.PublishBatch(context.Background(), "signals", nil))

	require.Len(t, w.msgs, 3)
	assert.Equal(t, "signals", w.msgs[0].Topic)
	assert.Equal(t, "PKM-001", string(w.msgs[0].Key))
	assert.JSONEq(t, `{"n":1}`, string(w.msgs[0].Value))
	assert.Equal(t, "plain", string(w.msgs[1].Value))
	assert.Equal(t, "raw", string(w.msgs[2].Value))
}

func TestPublishWrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p, err := NewProducer(WithWriter(&memWriter{err: boom}))
	require.NoError(t, err)

	err = p.Publish(context.Background(), "signals", nil, "x")
	assert.ErrorIs(t, err, boom)
}

func TestParseCompression(t *testing.T) {
	assert.Equal(t, kafka.Snappy, parseCompression("snappy"))
	assert.Equal(t, kafka.Zstd, parseCompression("zstd"))
	assert.Equal(t, kafka.Gzip, parseCompression("unknown"))
}

func TestProducerConfigValidate(t *testing.T) {
	cfg := DefaultProducerConfig()
	assert.Error(t, cfg.Validate())

	WithBrokers([]string{"localhost:9092"})(&cfg)
	require.NoError(t, cfg.Validate())

	WithRequiredAcks(2)(&cfg)
	assert.Error(t, cfg.Validate())
	WithRequiredAcks(1)(&cfg)

	WithCompression("brotli")(&cfg)
	assert.Error(t, cfg.Validate())
	WithCompression("")(&cfg)
	assert.Equal(t, "brotli", cfg.Compression)
}

func TestWithBatchingKeepsDefaultsForZero(t *testing.T) {
	cfg := DefaultProducerConfig()
	WithBatching(0, 2048, 0)(&cfg)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 2048, cfg.BatchBytes)
	assert.Equal(t, time.Second, cfg.BatchTimeout)
}
