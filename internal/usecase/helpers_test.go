package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"RWAPulse/internal/domain/models"
	"RWAPulse/internal/services/analytics"
)

func newTestScanner(t *testing.T, opts ...ScannerOption) *SignalScanner {
	t.Helper()
	vc, err := models.NewVenueClasses(
		[]string{"Beezie", "CollectorCrypt"},
		[]string{"eBay", "TCGPlayer", "Cardmarket"},
	)
	require.NoError(t, err)
	cls, err := analytics.NewSignalClassifier(analytics.ThresholdConfig{
		DivergenceCriticalPct: 10,
		ScarcityMinCount:      5,
		LiquidityDropPct:      -20,
	})
	require.NoError(t, err)
	return NewSignalScanner(analytics.NewNormalizer(vc), analytics.NewDivergenceAnalyzer(vc), cls, opts...)
}

func scenarioRecords() []models.SnapshotRecord {
	return []models.SnapshotRecord{
		{
			AssetID:     "PKM-A",
			VenuePrices: map[string]float64{"Beezie": 750, "CollectorCrypt": 780, "eBay": 830},
		},
		{
			AssetID:     "PKM-B",
			VenuePrices: map[string]float64{"Beezie": 100, "eBay": 100},
			Supply:      &models.Supply{OnChainCount: 3, OffChainCount: 40},
		},
		{
			AssetID:     "PKM-C",
			VenuePrices: map[string]float64{"Beezie": 0, "eBay": 0},
		},
	}
}

// fakeMetrics records calls for assertions.
type fakeMetrics struct {
	mu      sync.Mutex
	signals map[string]int
	errors  map[string]int
	div     map[string]float64
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{signals: map[string]int{}, errors: map[string]int{}, div: map[string]float64{}}
}

func (m *fakeMetrics) RecordSignal(kind, _ string) {
	m.mu.Lock()
	m.signals[kind]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordDivergence(asset string, pct float64) {
	m.mu.Lock()
	m.div[asset] = pct
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordLatency(string, float64) {}

// fakeProvider returns canned batches in order, then repeats the last one.
type fakeProvider struct {
	mu      sync.Mutex
	batches [][]models.SnapshotRecord
	err     error
	calls   int
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Fetch(ctx context.Context) ([]models.SnapshotRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	if len(p.batches) == 0 {
		return nil, nil
	}
	i := p.calls - 1
	if i >= len(p.batches) {
		i = len(p.batches) - 1
	}
	return p.batches[i], nil
}

func (p *fakeProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// sampledProvider adds FetchSample returning the first n records.
type sampledProvider struct {
	fakeProvider
	lastN int
}

func (p *sampledProvider) FetchSample(ctx context.Context, n int) ([]models.SnapshotRecord, error) {
	recs, err := p.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.lastN = n
	p.mu.Unlock()
	if n < len(recs) {
		recs = recs[:n]
	}
	return recs, nil
}

type memStore struct {
	mu     sync.Mutex
	latest *models.ScanReport
	err    error
}

func (s *memStore) SaveLatest(_ context.Context, r *models.ScanReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.latest = r
	return nil
}

func (s *memStore) Latest(context.Context) (*models.ScanReport, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.latest != nil, nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []*models.SignalEvent
	err    error
}

func (p *capturePublisher) Publish(ctx context.Context, ev *models.SignalEvent) error {
	return p.PublishBatch(ctx, []*models.SignalEvent{ev})
}

func (p *capturePublisher) PublishBatch(_ context.Context, evs []*models.SignalEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evs...)
	return nil
}

func (p *capturePublisher) Close() error { return nil }
