package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rwapulse",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of signal API endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	APIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rwapulse",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by signal API endpoint",
		},
		[]string{"endpoint", "code"},
	)
)

// Register is idempotent.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(APILatency, APIErrors)
	})
}

// Observe records one endpoint call. code is empty on success.
func Observe(endpoint string, start time.Time, code string) {
	APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if code != "" {
		APIErrors.WithLabelValues(endpoint, code).Inc()
	}
}
