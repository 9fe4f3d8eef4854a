package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jpillora/backoff"

	"RWAPulse/internal/domain/models"
	domrepo "RWAPulse/internal/domain/repository"
)

// PublishPipeline sits between the dispatcher and a SignalPublisher.
// It validates events, forwards them, and buffers the ones that failed so a
// background loop can re-flush them with exponential backoff once the
// downstream recovers. A full buffer drops the event and counts it.
type PublishPipeline struct {
	next    domrepo.SignalPublisher
	metrics domrepo.Metrics
	bufCh   chan *models.SignalEvent
	minWait time.Duration
	maxWait time.Duration

	mu      sync.Mutex
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

type PipelineOption func(*PublishPipeline)

// WithBufferSize sets how many failed events are kept for retry.
func WithBufferSize(n int) PipelineOption {
	return func(p *PublishPipeline) {
		if n > 0 {
			p.bufCh = make(chan *models.SignalEvent, n)
		}
	}
}

// WithRetryBackoff bounds the delay between re-flush attempts.
func WithRetryBackoff(min, max time.Duration) PipelineOption {
	return func(p *PublishPipeline) {
		if min > 0 && max >= min {
			p.minWait, p.maxWait = min, max
		}
	}
}

func NewPublishPipeline(next domrepo.SignalPublisher, metrics domrepo.Metrics, opts ...PipelineOption) *PublishPipeline {
	if metrics == nil {
		metrics = domrepo.NoopMetrics{}
	}
	p := &PublishPipeline{
		next:    next,
		metrics: metrics,
		bufCh:   make(chan *models.SignalEvent, 1000),
		minWait: 50 * time.Millisecond,
		maxWait: 2 * time.Second,
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the background re-flush loop.
func (p *PublishPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	p.wg.Add(1)
	go p.flushLoop(ctx)
}

func (p *PublishPipeline) flushLoop(ctx context.Context) {
	defer p.wg.Done()
	b := &backoff.Backoff{Min: p.minWait, Max: p.maxWait, Factor: 2}
	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case ev := <-p.bufCh:
			if err := p.next.Publish(ctx, ev); err != nil {
				p.metrics.RecordError("pipeline_flush")
				p.requeue(ev)
				select {
				case <-time.After(b.Duration()):
				case <-p.stopCh:
					return
				case <-ctx.Done():
					return
				}
				continue
			}
			b.Reset()
		}
	}
}

// Publish validates and forwards one event, buffering it on downstream failure.
func (p *PublishPipeline) Publish(ctx context.Context, ev *models.SignalEvent) error {
	start := time.Now()
	if err := validateEvent(ev); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if err := p.next.Publish(ctx, ev); err != nil {
		p.metrics.RecordError("pipeline_publish")
		p.requeue(ev)
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_publish", time.Since(start).Seconds())
	return nil
}

// PublishBatch forwards valid events as one batch; invalid ones are dropped and
// counted. On downstream failure the whole valid batch is buffered.
func (p *PublishPipeline) PublishBatch(ctx context.Context, evs []*models.SignalEvent) error {
	valid := make([]*models.SignalEvent, 0, len(evs))
	for _, ev := range evs {
		if err := validateEvent(ev); err != nil {
			p.metrics.RecordError("pipeline_validate")
			continue
		}
		valid = append(valid, ev)
	}
	if len(valid) == 0 {
		return nil
	}
	if err := p.next.PublishBatch(ctx, valid); err != nil {
		p.metrics.RecordError("pipeline_publish")
		for _, ev := range valid {
			p.requeue(ev)
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	return nil
}

// Buffered reports how many events wait for a re-flush.
func (p *PublishPipeline) Buffered() int { return len(p.bufCh) }

// Close stops the flush loop and closes the downstream publisher.
// Events still buffered are dropped.
func (p *PublishPipeline) Close() error {
	p.mu.Lock()
	if p.started {
		p.started = false
		close(p.stopCh)
	}
	p.mu.Unlock()
	p.wg.Wait()
	return p.next.Close()
}

func (p *PublishPipeline) requeue(ev *models.SignalEvent) {
	select {
	case p.bufCh <- ev:
	default:
		p.metrics.RecordError("pipeline_buffer_drop")
	}
}

func validateEvent(ev *models.SignalEvent) error {
	if ev == nil {
		return fmt.Errorf("event nil")
	}
	if ev.CycleID == "" {
		return fmt.Errorf("event cycle id empty")
	}
	if ev.Signal.AssetID == "" {
		return fmt.Errorf("event asset id empty")
	}
	if ev.Signal.Kind == "" {
		return fmt.Errorf("event kind empty")
	}
	return nil
}

var _ domrepo.SignalPublisher = (*PublishPipeline)(nil)
