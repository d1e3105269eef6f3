package dtable

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    selectCounter  prometheus.Counter
//	    joinHistogram  prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordSelect(rows int, duration time.Duration, err error) {
//	    p.selectCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordSelect is called after each selection.
	// rows is the number of selected rows.
	RecordSelect(rows int, duration time.Duration, err error)

	// RecordAggregate is called after each aggregation.
	// groups is the number of output rows.
	RecordAggregate(groups int, duration time.Duration, err error)

	// RecordMutation is called after each assignment or drop.
	RecordMutation(rows int, duration time.Duration, err error)

	// RecordJoin is called after each join.
	// rows is the number of output rows.
	RecordJoin(rows int, duration time.Duration, err error)

	// RecordSetKey is called after each key change.
	RecordSetKey(rows int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSelect(int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordAggregate(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordMutation(int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordJoin(int, time.Duration, error)      {}
func (NoopMetricsCollector) RecordSetKey(int, time.Duration, error)    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SelectCount         atomic.Int64
	SelectErrors        atomic.Int64
	SelectRows          atomic.Int64
	SelectTotalNanos    atomic.Int64
	AggregateCount      atomic.Int64
	AggregateErrors     atomic.Int64
	AggregateGroups     atomic.Int64
	AggregateTotalNanos atomic.Int64
	MutationCount       atomic.Int64
	MutationErrors      atomic.Int64
	MutationRows        atomic.Int64
	JoinCount           atomic.Int64
	JoinErrors          atomic.Int64
	JoinRows            atomic.Int64
	JoinTotalNanos      atomic.Int64
	SetKeyCount         atomic.Int64
	SetKeyErrors        atomic.Int64
}

// RecordSelect implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSelect(rows int, duration time.Duration, err error) {
	b.SelectCount.Add(1)
	b.SelectTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SelectErrors.Add(1)
		return
	}
	b.SelectRows.Add(int64(rows))
}

// RecordAggregate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAggregate(groups int, duration time.Duration, err error) {
	b.AggregateCount.Add(1)
	b.AggregateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AggregateErrors.Add(1)
		return
	}
	b.AggregateGroups.Add(int64(groups))
}

// RecordMutation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMutation(rows int, duration time.Duration, err error) {
	b.MutationCount.Add(1)
	if err != nil {
		b.MutationErrors.Add(1)
		return
	}
	b.MutationRows.Add(int64(rows))
}

// RecordJoin implements MetricsCollector.
func (b *BasicMetricsCollector) RecordJoin(rows int, duration time.Duration, err error) {
	b.JoinCount.Add(1)
	b.JoinTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.JoinErrors.Add(1)
		return
	}
	b.JoinRows.Add(int64(rows))
}

// RecordSetKey implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSetKey(rows int, duration time.Duration, err error) {
	b.SetKeyCount.Add(1)
	if err != nil {
		b.SetKeyErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SelectCount:       b.SelectCount.Load(),
		SelectErrors:      b.SelectErrors.Load(),
		SelectRows:        b.SelectRows.Load(),
		SelectAvgNanos:    avg(b.SelectTotalNanos.Load(), b.SelectCount.Load()),
		AggregateCount:    b.AggregateCount.Load(),
		AggregateErrors:   b.AggregateErrors.Load(),
		AggregateGroups:   b.AggregateGroups.Load(),
		AggregateAvgNanos: avg(b.AggregateTotalNanos.Load(), b.AggregateCount.Load()),
		MutationCount:     b.MutationCount.Load(),
		MutationErrors:    b.MutationErrors.Load(),
		MutationRows:      b.MutationRows.Load(),
		JoinCount:         b.JoinCount.Load(),
		JoinErrors:        b.JoinErrors.Load(),
		JoinRows:          b.JoinRows.Load(),
		JoinAvgNanos:      avg(b.JoinTotalNanos.Load(), b.JoinCount.Load()),
		SetKeyCount:       b.SetKeyCount.Load(),
		SetKeyErrors:      b.SetKeyErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SelectCount       int64
	SelectErrors      int64
	SelectRows        int64
	SelectAvgNanos    int64
	AggregateCount    int64
	AggregateErrors   int64
	AggregateGroups   int64
	AggregateAvgNanos int64
	MutationCount     int64
	MutationErrors    int64
	MutationRows      int64
	JoinCount         int64
	JoinErrors        int64
	JoinRows          int64
	JoinAvgNanos      int64
	SetKeyCount       int64
	SetKeyErrors      int64
}
