package service

import "RWAPulse/internal/domain/models"

// Analyzer computes the divergence metric and extremum venues for one record.
type Analyzer interface {
	Analyze(rec models.SnapshotRecord) models.AnalysisResult
}

// Classifier maps an analysis result onto exactly one signal.
type Classifier interface {
	Classify(res models.AnalysisResult) models.Signal
}

// RecordNormalizer validates a raw record and returns a defensive copy.
type RecordNormalizer interface {
	Normalize(rec models.SnapshotRecord) (models.SnapshotRecord, error)
}
