package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	signalsTotal *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	divergence   *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New registers the collectors on reg, or on the default registry when reg is nil.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		signalsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rwapulse_signals_total",
				Help: "Signals emitted, by kind",
			},
			[]string{"kind", "asset"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rwapulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		divergence: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rwapulse_divergence_pct",
				Help: "Last computed price divergence per asset, in percent",
			},
			[]string{"asset"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rwapulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSignal counts one emitted signal.
func (r *Recorder) RecordSignal(kind, assetID string) {
	r.signalsTotal.WithLabelValues(kind, assetID).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordDivergence stores the latest divergence for an asset.
func (r *Recorder) RecordDivergence(assetID string, pct float64) {
	r.divergence.WithLabelValues(assetID).Set(pct)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
