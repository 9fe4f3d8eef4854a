package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordSignal("arbitrage_opportunity", "PKM-001")
	r.RecordSignal("arbitrage_opportunity", "PKM-001")
	r.RecordError("invalid_record")
	r.RecordDivergence("PKM-001", 10.67)
	r.RecordLatency("scan", 0.01)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.signalsTotal.WithLabelValues("arbitrage_opportunity", "PKM-001")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("invalid_record")))
	assert.Equal(t, 10.67, testutil.ToFloat64(r.divergence.WithLabelValues("PKM-001")))

	n, err := testutil.GatherAndCount(reg, "rwapulse_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
