package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserve(t *testing.T) {
	Register()
	Register()

	before := testutil.ToFloat64(APIErrors.WithLabelValues("analyze", "ERR_INVALID_RECORD"))
	Observe("analyze", time.Now(), "")
	Observe("analyze", time.Now(), "ERR_INVALID_RECORD")

	assert.Equal(t, before+1, testutil.ToFloat64(APIErrors.WithLabelValues("analyze", "ERR_INVALID_RECORD")))
	assert.Equal(t, 1, testutil.CollectAndCount(APILatency))
}
