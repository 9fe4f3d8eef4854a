package repository

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RWAPulse/internal/domain/models"
	pkgkafka "RWAPulse/pkg/kafka"
)

type captureWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	w.msgs = append(w.msgs, msgs...)
	w.mu.Unlock()
	return nil
}

func (w *captureWriter) Close() error { return nil }

func TestKafkaSignalPublisher(t *testing.T) {
	w := &captureWriter{}
	prod, err := pkgkafka.NewProducer(pkgkafka.WithWriter(w))
	require.NoError(t, err)
	pub := NewKafkaSignalPublisher(prod, "rwapulse.signals")

	ev := &models.SignalEvent{
		CycleID:  "cycle-1",
		Signal:   models.Signal{AssetID: "PKM-001", Kind: models.KindArbitrage, DivergencePct: 10.67},
		Headline: "THE BALANCE IS DISTURBED",
	}
	require.NoError(t, pub.Publish(context.Background(), ev))
	require.NoError(t, pub.PublishBatch(context.Background(), []*models.SignalEvent{nil, ev}))
	assert.Error(t, pub.Publish(context.Background(), nil))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "rwapulse.signals", w.msgs[0].Topic)
	assert.Equal(t, "PKM-001", string(w.msgs[0].Key))

	var got models.SignalEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "cycle-1", got.CycleID)
	assert.Equal(t, models.KindArbitrage, got.Signal.Kind)
	assert.Equal(t, "THE BALANCE IS DISTURBED", got.Headline)
	require.NoError(t, pub.Close())
}
