package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"RWAPulse/internal/domain/models"
	domrepo "RWAPulse/internal/domain/repository"
	domsvc "RWAPulse/internal/domain/service"
	"RWAPulse/pkg/logger"
)

// SignalScanner runs normalize, analyze and classify over a batch of records.
type SignalScanner struct {
	normalizer domsvc.RecordNormalizer
	analyzer   domsvc.Analyzer
	classifier domsvc.Classifier
	metrics    domrepo.Metrics
	log        *logger.Logger
	workers    int
	now        func() time.Time
}

type ScannerOption func(*SignalScanner)

func WithScanWorkers(n int) ScannerOption {
	return func(s *SignalScanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithScanMetrics(m domrepo.Metrics) ScannerOption {
	return func(s *SignalScanner) {
		if m != nil {
			s.metrics = m
		}
	}
}

func WithScanLogger(l *logger.Logger) ScannerOption {
	return func(s *SignalScanner) {
		if l != nil {
			s.log = l
		}
	}
}

func NewSignalScanner(n domsvc.RecordNormalizer, a domsvc.Analyzer, c domsvc.Classifier, opts ...ScannerOption) *SignalScanner {
	s := &SignalScanner{
		normalizer: n,
		analyzer:   a,
		classifier: c,
		metrics:    domrepo.NoopMetrics{},
		log:        logger.Nop(),
		workers:    4,
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Evaluate runs the pipeline for a single record.
func (s *SignalScanner) Evaluate(rec models.SnapshotRecord) (models.AnalysisResult, models.Signal, error) {
	clean, err := s.normalizer.Normalize(rec)
	if err != nil {
		return models.AnalysisResult{}, models.Signal{}, err
	}
	res := s.analyzer.Analyze(clean)
	return res, s.classifier.Classify(res), nil
}

// Scan evaluates every record and returns one result per record, in input order.
// Malformed records fail individually; the rest of the batch still completes.
func (s *SignalScanner) Scan(ctx context.Context, records []models.SnapshotRecord) *models.ScanReport {
	start := s.now()
	report := &models.ScanReport{
		CycleID:   uuid.NewString(),
		StartedAt: start,
		Results:   make([]models.ScanResult, len(records)),
		Counts:    make(map[models.SignalKind]int, 4),
	}

	type item struct {
		idx int
		res models.ScanResult
	}
	jobs := make(chan int)
	out := make(chan item, len(records))

	workers := s.workers
	if workers > len(records) {
		workers = len(records)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				out <- item{idx, s.scanOne(ctx, records[idx])}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range records {
			jobs <- i
		}
	}()
	go func() { wg.Wait(); close(out) }()

	for it := range out {
		report.Results[it.idx] = it.res
	}

	for _, r := range report.Results {
		if r.Err != nil {
			report.Failed++
			continue
		}
		report.Counts[r.Signal.Kind]++
	}

	report.FinishedAt = s.now()
	s.metrics.RecordLatency("scan", report.FinishedAt.Sub(start).Seconds())
	s.log.Debug("scan finished",
		logger.String("cycle_id", report.CycleID),
		logger.Int("records", len(records)),
		logger.Int("failed", report.Failed),
	)
	return report
}

func (s *SignalScanner) scanOne(ctx context.Context, rec models.SnapshotRecord) models.ScanResult {
	out := models.ScanResult{AssetID: rec.AssetID}
	if err := ctx.Err(); err != nil {
		out.Err, out.Error = err, err.Error()
		return out
	}

	res, sig, err := s.Evaluate(rec)
	if err != nil {
		out.Err, out.Error = err, err.Error()
		s.metrics.RecordError(errorKind(err))
		s.log.Warn("record rejected", logger.String("asset_id", rec.AssetID), logger.Error(err))
		return out
	}

	out.AssetID = sig.AssetID
	out.Signal = &sig
	s.metrics.RecordSignal(string(sig.Kind), sig.AssetID)
	if res.HasExtremes() {
		s.metrics.RecordDivergence(sig.AssetID, res.DivergencePct)
	}
	return out
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "scan_cancelled"
	default:
		return "invalid_record"
	}
}
