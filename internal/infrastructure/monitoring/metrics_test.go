package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordToolCall(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordToolCall("launch", nil, 10*time.Millisecond)
	m.RecordToolCall("launch", errors.New("boom"), 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("launch", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("launch", "error")))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.ToolCalls)
	assert.Equal(t, int64(1), snap.ToolFailures)
}

func TestRecordPoll(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordPoll("openurl", OutcomeTimeout, time.Second)
	m.RecordPoll("openurl", OutcomeUnverifiable, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PollWaits.WithLabelValues("openurl", OutcomeTimeout)))
	assert.Equal(t, int64(1), m.Snapshot().PollTimeouts)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordToolCall("launch", nil, time.Millisecond)
	m.RecordPoll("launch", OutcomeVerified, time.Millisecond)
	m.RecordAppOperation("install", nil)
	assert.Equal(t, MetricsSnapshot{}, m.Snapshot())
}
