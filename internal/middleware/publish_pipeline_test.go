package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RWAPulse/internal/domain/models"
	domrepo "RWAPulse/internal/domain/repository"
)

type flakyPublisher struct {
	mu        sync.Mutex
	failures  int
	published []*models.SignalEvent
	closed    bool
}

func (f *flakyPublisher) Publish(_ context.Context, ev *models.SignalEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("downstream unavailable")
	}
	f.published = append(f.published, ev)
	return nil
}

func (f *flakyPublisher) PublishBatch(ctx context.Context, evs []*models.SignalEvent) error {
	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return errors.New("downstream unavailable")
	}
	f.published = append(f.published, evs...)
	f.mu.Unlock()
	return nil
}

func (f *flakyPublisher) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *flakyPublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

func event(asset string) *models.SignalEvent {
	return &models.SignalEvent{
		CycleID: "c-1",
		Signal:  models.Signal{AssetID: asset, Kind: models.KindStable},
	}
}

func TestPipelineForwards(t *testing.T) {
	down := &flakyPublisher{}
	p := NewPublishPipeline(down, domrepo.NoopMetrics{})

	require.NoError(t, p.Publish(context.Background(), event("A")))
	require.NoError(t, p.PublishBatch(context.Background(), []*models.SignalEvent{event("B"), event("C")}))
	assert.Equal(t, 3, down.count())
	assert.Zero(t, p.Buffered())
}

func TestPipelineRejectsInvalid(t *testing.T) {
	down := &flakyPublisher{}
	p := NewPublishPipeline(down, nil)

	assert.Error(t, p.Publish(context.Background(), nil))
	assert.Error(t, p.Publish(context.Background(), &models.SignalEvent{CycleID: "c"}))

	require.NoError(t, p.PublishBatch(context.Background(), []*models.SignalEvent{nil, event("A")}))
	assert.Equal(t, 1, down.count())
}

func TestPipelineBuffersAndReflushes(t *testing.T) {
	down := &flakyPublisher{failures: 2}
	p := NewPublishPipeline(down, domrepo.NoopMetrics{}, WithRetryBackoff(time.Millisecond, 5*time.Millisecond))

	err := p.Publish(context.Background(), event("A"))
	require.Error(t, err)
	assert.Equal(t, 1, p.Buffered())

	p.Start(context.Background())
	assert.Eventually(t, func() bool { return down.count() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, p.Close())
	assert.True(t, down.closed)
}

func TestPipelineDropsWhenFull(t *testing.T) {
	down := &flakyPublisher{failures: 10}
	p := NewPublishPipeline(down, domrepo.NoopMetrics{}, WithBufferSize(1))

	_ = p.Publish(context.Background(), event("A"))
	_ = p.Publish(context.Background(), event("B"))
	assert.Equal(t, 1, p.Buffered())
	require.NoError(t, p.Close())
}
