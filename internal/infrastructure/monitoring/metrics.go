package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Control tool metrics
	ToolCalls    *prometheus.CounterVec
	ToolDuration *prometheus.HistogramVec

	// Verification metrics
	PollWaits    *prometheus.CounterVec
	PollDuration *prometheus.HistogramVec

	// Application metrics
	AppOperations *prometheus.CounterVec

	// Running totals printed by `simdriver system info`
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds the totals of the current process
type MetricsSnapshot struct {
	ToolCalls    int64 `json:"tool_calls"`
	ToolFailures int64 `json:"tool_failures"`
	PollTimeouts int64 `json:"poll_timeouts"`
}

// NewMetrics creates a new metrics collector registered on reg.
// A nil reg registers on the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Control tool metrics
		ToolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simdriver_tool_calls_total",
				Help: "Total number of control tool invocations",
			},
			[]string{"command", "status"},
		),
		ToolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "simdriver_tool_duration_seconds",
				Help:    "Control tool invocation duration in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"command"},
		),

		// Verification metrics
		PollWaits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simdriver_poll_waits_total",
				Help: "Total number of state verification waits by outcome",
			},
			[]string{"operation", "outcome"},
		),
		PollDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "simdriver_poll_duration_seconds",
				Help:    "Time spent waiting for a state post-condition",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 25, 60},
			},
			[]string{"operation"},
		),

		// Application metrics
		AppOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simdriver_app_operations_total",
				Help: "Total number of application lifecycle operations",
			},
			[]string{"operation", "status"},
		),
	}
}

// RecordToolCall records a control tool invocation
func (m *Metrics) RecordToolCall(command string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.ToolCalls.WithLabelValues(command, status(err)).Inc()
	m.ToolDuration.WithLabelValues(command).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.ToolCalls++
	if err != nil {
		m.snapshot.ToolFailures++
	}
	m.mu.Unlock()
}

// RecordPoll records the outcome of a verification wait
func (m *Metrics) RecordPoll(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.PollWaits.WithLabelValues(operation, outcome).Inc()
	m.PollDuration.WithLabelValues(operation).Observe(duration.Seconds())

	if outcome == OutcomeTimeout {
		m.mu.Lock()
		m.snapshot.PollTimeouts++
		m.mu.Unlock()
	}
}

// RecordAppOperation records an application lifecycle operation
func (m *Metrics) RecordAppOperation(operation string, err error) {
	if m == nil {
		return
	}
	m.AppOperations.WithLabelValues(operation, status(err)).Inc()
}

// Snapshot returns a copy of the current counters
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Poll outcomes
const (
	OutcomeVerified     = "verified"
	OutcomeTimeout      = "timeout"
	OutcomeUnverifiable = "unverifiable"
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
