package repository

import (
	"context"
	"time"

	"RWAPulse/internal/domain/models"
)

// SnapshotProvider produces one batch of snapshot records per call.
// How the batch is sourced (file, generator, network, database) is up to the implementation.
type SnapshotProvider interface {
	Name() string
	Fetch(ctx context.Context) ([]models.SnapshotRecord, error)
}

// SampledProvider can return a random subset of its batch on demand.
type SampledProvider interface {
	SnapshotProvider
	FetchSample(ctx context.Context, n int) ([]models.SnapshotRecord, error)
}

// SignalPublisher ships signal events to a downstream consumer.
type SignalPublisher interface {
	Publish(ctx context.Context, ev *models.SignalEvent) error
	PublishBatch(ctx context.Context, evs []*models.SignalEvent) error
	Close() error
}

// ReportStore keeps the latest scan report for readers. It is not a history store.
type ReportStore interface {
	SaveLatest(ctx context.Context, r *models.ScanReport) error
	Latest(ctx context.Context) (*models.ScanReport, bool, error)
}

type Metrics interface {
	RecordSignal(kind string, assetID string)
	RecordDivergence(assetID string, pct float64)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}

// NoopMetrics discards everything; handy for tests and one-shot CLI runs.
type NoopMetrics struct{}

func (NoopMetrics) RecordSignal(string, string) {}
func (NoopMetrics) RecordDivergence(string, float64) {}
func (NoopMetrics) RecordError(string) {}
func (NoopMetrics) RecordLatency(string, float64) {}

var _ Metrics = NoopMetrics{}

// Since is a small helper for latency recording.
func Since(start time.Time) float64 { return time.Since(start).Seconds() }
