// Package monitoring provides Prometheus metrics for control tool calls and
// state verification waits.
//
// All recording methods are nil-safe, so components accept an optional
// *Metrics and call it unconditionally.
//
// Metrics:
//   - simdriver_tool_calls_total{command,status}
//   - simdriver_tool_duration_seconds{command}
//   - simdriver_poll_waits_total{operation,outcome}
//   - simdriver_poll_duration_seconds{operation}
//   - simdriver_app_operations_total{operation,status}
//
// Example Usage:
//
//	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
//	metrics.RecordToolCall("launch", err, time.Since(start))
package monitoring
