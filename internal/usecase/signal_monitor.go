package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"RWAPulse/internal/domain/models"
	domrepo "RWAPulse/internal/domain/repository"
	"RWAPulse/pkg/logger"
)

// ErrSamplingUnsupported is returned by RunSample when the provider cannot sample.
var ErrSamplingUnsupported = errors.New("provider does not support sampling")

// SignalMonitor runs fetch, scan and dispatch cycles, once or on a ticker.
// Cycles never overlap.
type SignalMonitor struct {
	provider   domrepo.SnapshotProvider
	scanner    *SignalScanner
	dispatcher *SignalDispatcher
	store      domrepo.ReportStore
	metrics    domrepo.Metrics
	log        *logger.Logger
	interval   time.Duration

	cycleMu sync.Mutex

	mu      sync.Mutex
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

type MonitorOption func(*SignalMonitor)

func WithMonitorInterval(d time.Duration) MonitorOption {
	return func(m *SignalMonitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

func WithReportStore(s domrepo.ReportStore) MonitorOption {
	return func(m *SignalMonitor) { m.store = s }
}

func WithMonitorMetrics(mt domrepo.Metrics) MonitorOption {
	return func(m *SignalMonitor) {
		if mt != nil {
			m.metrics = mt
		}
	}
}

func WithMonitorLogger(l *logger.Logger) MonitorOption {
	return func(m *SignalMonitor) {
		if l != nil {
			m.log = l
		}
	}
}

// NewSignalMonitor wires a monitor. dispatcher may be nil when nothing consumes signals.
func NewSignalMonitor(p domrepo.SnapshotProvider, s *SignalScanner, d *SignalDispatcher, opts ...MonitorOption) *SignalMonitor {
	m := &SignalMonitor{
		provider:   p,
		scanner:    s,
		dispatcher: d,
		metrics:    domrepo.NoopMetrics{},
		log:        logger.Nop(),
		interval:   10 * time.Second,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// RunOnce runs a single cycle over the provider's full batch.
func (m *SignalMonitor) RunOnce(ctx context.Context) (*models.ScanReport, error) {
	return m.cycle(ctx, m.provider.Fetch)
}

// RunSample runs a cycle over n random records. n <= 0 means the full batch.
func (m *SignalMonitor) RunSample(ctx context.Context, n int) (*models.ScanReport, error) {
	if n <= 0 {
		return m.RunOnce(ctx)
	}
	sp, ok := m.provider.(domrepo.SampledProvider)
	if !ok {
		return nil, fmt.Errorf("%s: %w", m.provider.Name(), ErrSamplingUnsupported)
	}
	return m.cycle(ctx, func(ctx context.Context) ([]models.SnapshotRecord, error) {
		return sp.FetchSample(ctx, n)
	})
}

func (m *SignalMonitor) cycle(ctx context.Context, fetch func(context.Context) ([]models.SnapshotRecord, error)) (*models.ScanReport, error) {
	m.cycleMu.Lock()
	defer m.cycleMu.Unlock()

	start := time.Now()
	name := m.provider.Name()
	recs, err := fetch(ctx)
	if err != nil {
		m.metrics.RecordError("provider")
		m.log.Error("snapshot fetch failed", logger.String("provider", name), logger.Error(err))
		return nil, fmt.Errorf("fetch snapshot from %s: %w", name, err)
	}

	report := m.scanner.Scan(ctx, recs)
	report.Provider = name

	if m.dispatcher != nil {
		if err := m.dispatcher.Dispatch(ctx, report); err != nil {
			// the report itself is still valid
			m.log.Warn("dispatch failed", logger.String("cycle_id", report.CycleID), logger.Error(err))
		}
	}
	if m.store != nil {
		if err := m.store.SaveLatest(ctx, report); err != nil {
			m.metrics.RecordError("report_store")
			m.log.Warn("report not cached", logger.String("cycle_id", report.CycleID), logger.Error(err))
		}
	}

	m.metrics.RecordLatency("cycle", domrepo.Since(start))
	m.log.Info("cycle complete",
		logger.String("cycle_id", report.CycleID),
		logger.String("provider", name),
		logger.Int("records", len(recs)),
		logger.Int("failed", report.Failed),
		logger.Int("arbitrage", report.Counts[models.KindArbitrage]),
		logger.Int("scarcity", report.Counts[models.KindScarcity]),
		logger.Int("liquidity", report.Counts[models.KindLiquidity]),
		logger.Duration("took_ms", time.Since(start)),
	)
	return report, nil
}

// Latest returns the last cached report, if any.
func (m *SignalMonitor) Latest(ctx context.Context) (*models.ScanReport, bool, error) {
	if m.store == nil {
		return nil, false, nil
	}
	return m.store.Latest(ctx)
}

// Start runs a cycle immediately, then one per interval until ctx ends or Shutdown.
// Failed cycles are logged; the loop keeps going.
func (m *SignalMonitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true
	// a fresh channel per run; Shutdown closed the previous one
	m.stopCh = make(chan struct{})
	m.wg.Add(1)
	go m.loop(ctx, m.stopCh)
}

func (m *SignalMonitor) loop(ctx context.Context, stop <-chan struct{}) {
	defer m.wg.Done()
	t := time.NewTicker(m.interval)
	defer t.Stop()

	for {
		_, _ = m.RunOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-t.C:
		}
	}
}

// Shutdown stops the loop and waits for the running cycle, bounded by ctx.
func (m *SignalMonitor) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.started = false
		close(m.stopCh)
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
