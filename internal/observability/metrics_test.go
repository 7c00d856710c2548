package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRequestCountsByRouteAndStatus(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/items", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/items", "GET", 200, 20*time.Millisecond)
	m.RecordRequest("/items", "GET", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/items", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/items", "GET", "404")))
}

func TestRecordSwapTransitionAndErrors(t *testing.T) {
	m := NewMetrics()

	m.RecordSwapTransition("accepted")
	m.RecordError("/swaps", "PUT", "CONFLICT")
	m.RecordUpload("ok")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.swapTransitions.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/swaps", "PUT", "CONFLICT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploads.WithLabelValues("ok")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordSwapTransition("pending")
		m.RecordUpload("ok")
	})
}
