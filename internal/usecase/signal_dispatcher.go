package usecase

import (
	"context"
	"fmt"
	"time"

	"RWAPulse/internal/domain/models"
	domrepo "RWAPulse/internal/domain/repository"
	"RWAPulse/internal/render"
	"RWAPulse/pkg/logger"
)

// SignalDispatcher renders each signal of a report and fans it out to the
// console sink and, when configured, to a publisher.
type SignalDispatcher struct {
	persona *render.Persona
	sink    *render.ConsoleSink
	pub     domrepo.SignalPublisher
	metrics domrepo.Metrics
	log     *logger.Logger
	now     func() time.Time
}

type DispatcherOption func(*SignalDispatcher)

func WithConsoleSink(s *render.ConsoleSink) DispatcherOption {
	return func(d *SignalDispatcher) { d.sink = s }
}

func WithPublisher(p domrepo.SignalPublisher) DispatcherOption {
	return func(d *SignalDispatcher) { d.pub = p }
}

func WithDispatchMetrics(m domrepo.Metrics) DispatcherOption {
	return func(d *SignalDispatcher) {
		if m != nil {
			d.metrics = m
		}
	}
}

func WithDispatchLogger(l *logger.Logger) DispatcherOption {
	return func(d *SignalDispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

func NewSignalDispatcher(persona *render.Persona, opts ...DispatcherOption) *SignalDispatcher {
	d := &SignalDispatcher{
		persona: persona,
		metrics: domrepo.NoopMetrics{},
		log:     logger.Nop(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Dispatch handles signals in report order. A signal that fails to render is
// logged and skipped; publishing happens once per report as a batch.
func (d *SignalDispatcher) Dispatch(ctx context.Context, report *models.ScanReport) error {
	if report == nil {
		return nil
	}
	emitted := d.now()
	events := make([]*models.SignalEvent, 0, len(report.Results))

	for _, sig := range report.Signals() {
		post, err := d.persona.Render(sig)
		if err != nil {
			d.metrics.RecordError("render")
			d.log.Warn("render failed", logger.String("asset_id", sig.AssetID), logger.Error(err))
			continue
		}
		if d.sink != nil {
			if err := d.sink.Write(ctx, post); err != nil {
				return fmt.Errorf("console sink: %w", err)
			}
		}
		events = append(events, &models.SignalEvent{
			CycleID:   report.CycleID,
			EmittedAt: emitted,
			Signal:    sig,
			Headline:  post.Headline,
			Body:      post.Body,
		})
	}

	if d.pub == nil || len(events) == 0 {
		return nil
	}
	if err := d.pub.PublishBatch(ctx, events); err != nil {
		d.metrics.RecordError("publish")
		return fmt.Errorf("publish %d events: %w", len(events), err)
	}
	d.log.Debug("signals published",
		logger.String("cycle_id", report.CycleID),
		logger.Int("events", len(events)),
	)
	return nil
}

// Render exposes the persona for single-record callers such as the HTTP API.
func (d *SignalDispatcher) Render(sig models.Signal) (render.Post, error) {
	return d.persona.Render(sig)
}
