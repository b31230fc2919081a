package eventstore

import (
	"time"
)

// Logger interface for operational logging, warnings, and error reporting.
// It is slog-compatible; any structured logger can be adapted to it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MetricsCollector interface for collecting store and publisher performance
// metrics. This interface is dependency-free so users can integrate with any
// metrics backend by implementing it.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}
