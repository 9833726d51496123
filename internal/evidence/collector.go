package evidence

import (
	"context"
	"time"
)

// TimeRange bounds an evidence query
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// LogEntry is a single log line with its timestamp
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// MetricPoint is one sample in a metric time series
type MetricPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// MetricSeries is a named time series owned by one resource
type MetricSeries struct {
	ResourceID string        `json:"resource_id"`
	Name       string        `json:"name"`
	Points     []MetricPoint `json:"points"`
}

// ConnectionStringSource reads connection strings configured on a resource.
// Implementations report failure as an error wrapping
// domain.ErrCollectorUnavailable; they never panic.
type ConnectionStringSource interface {
	Read(ctx context.Context, resourceID string) ([]string, error)
}

// LogSource reads log entries emitted by a resource
type LogSource interface {
	Query(ctx context.Context, resourceID string, tr TimeRange) ([]LogEntry, error)
}

// MetricSource reads metric series for a resource and its peers
type MetricSource interface {
	Query(ctx context.Context, resourceID string, tr TimeRange) ([]MetricSeries, error)
}
