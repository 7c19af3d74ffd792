package board

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MeterName is the instrumentation name for board metrics.
const MeterName = "github.com/justsurfingit/Agentic-Job-Tracker/board"

// Metrics holds the engine's instruments.
type Metrics struct {
	commitCount    metric.Int64Counter
	rollbackCount  metric.Int64Counter
	commitDuration metric.Float64Histogram
}

// NewMetrics creates the instruments on mp. A nil provider records nothing.
func NewMetrics(mp metric.MeterProvider) *Metrics {
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	meter := mp.Meter(MeterName)
	m := &Metrics{}

	var err error
	m.commitCount, err = meter.Int64Counter(
		"board.commit.count",
		metric.WithDescription("Status moves sent to the backend"),
		metric.WithUnit("{commit}"),
	)
	if err != nil {
		m.commitCount, _ = noop.NewMeterProvider().Meter(MeterName).Int64Counter("board.commit.count")
	}

	m.rollbackCount, err = meter.Int64Counter(
		"board.rollback.count",
		metric.WithDescription("Optimistic moves reverted after a failed update"),
		metric.WithUnit("{commit}"),
	)
	if err != nil {
		m.rollbackCount, _ = noop.NewMeterProvider().Meter(MeterName).Int64Counter("board.rollback.count")
	}

	m.commitDuration, err = meter.Float64Histogram(
		"board.commit.duration",
		metric.WithDescription("Duration of status update calls in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.commitDuration, _ = noop.NewMeterProvider().Meter(MeterName).Float64Histogram("board.commit.duration")
	}

	return m
}

// RecordCommit records a settled commit.
func (m *Metrics) RecordCommit(ctx context.Context, out Outcome) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("board.status.to", string(out.To)),
		attribute.Bool("board.commit.success", out.Err == nil),
	)
	m.commitCount.Add(ctx, 1, attrs)
	m.commitDuration.Record(ctx, float64(out.Duration.Microseconds())/1000.0, attrs)
	if out.RolledBack {
		m.rollbackCount.Add(ctx, 1, attrs)
	}
}
