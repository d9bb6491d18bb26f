package bvhgo

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
//	    buildCounter      prometheus.Counter
//	    traverseHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordBuild(shapes int, duration time.Duration, err error) {
//	    p.buildCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordBuild is called after each tree construction.
	// shapes is the input size, duration is the total time taken,
	// err is nil if successful.
	RecordBuild(shapes int, duration time.Duration, err error)

	// RecordTraverse is called after each traversal.
	// hits is the number of candidate shapes returned.
	RecordTraverse(hits int, duration time.Duration, err error)

	// RecordBatchTraverse is called after each batch traversal.
	// count is the number of rays attempted, failed is the number that
	// failed, duration is the total time taken.
	RecordBatchTraverse(count, failed int, duration time.Duration)

	// RecordSnapshotSave is called after each snapshot write.
	RecordSnapshotSave(duration time.Duration, err error)

	// RecordSnapshotLoad is called after each snapshot read.
	RecordSnapshotLoad(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(int, time.Duration, error)       {}
func (NoopMetricsCollector) RecordTraverse(int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordBatchTraverse(int, int, time.Duration) {}
func (NoopMetricsCollector) RecordSnapshotSave(time.Duration, error)     {}
func (NoopMetricsCollector) RecordSnapshotLoad(time.Duration, error)     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount          atomic.Int64
	BuildErrors         atomic.Int64
	BuildTotalNanos     atomic.Int64
	TraverseCount       atomic.Int64
	TraverseErrors      atomic.Int64
	TraverseTotalNanos  atomic.Int64
	TraverseTotalHits   atomic.Int64
	BatchTraverseCount  atomic.Int64
	BatchTraverseRays   atomic.Int64
	BatchTraverseFailed atomic.Int64
	SnapshotSaveCount   atomic.Int64
	SnapshotSaveErrors  atomic.Int64
	SnapshotLoadCount   atomic.Int64
	SnapshotLoadErrors  atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(shapes int, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// RecordTraverse implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTraverse(hits int, duration time.Duration, err error) {
	b.TraverseCount.Add(1)
	b.TraverseTotalNanos.Add(duration.Nanoseconds())
	b.TraverseTotalHits.Add(int64(hits))
	if err != nil {
		b.TraverseErrors.Add(1)
	}
}

// RecordBatchTraverse implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatchTraverse(count, failed int, duration time.Duration) {
	b.BatchTraverseCount.Add(1)
	b.BatchTraverseRays.Add(int64(count))
	b.BatchTraverseFailed.Add(int64(failed))
}

// RecordSnapshotSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshotSave(duration time.Duration, err error) {
	b.SnapshotSaveCount.Add(1)
	if err != nil {
		b.SnapshotSaveErrors.Add(1)
	}
}

// RecordSnapshotLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshotLoad(duration time.Duration, err error) {
	b.SnapshotLoadCount.Add(1)
	if err != nil {
		b.SnapshotLoadErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:          b.BuildCount.Load(),
		BuildErrors:         b.BuildErrors.Load(),
		BuildAvgNanos:       b.getAvgBuildNanos(),
		TraverseCount:       b.TraverseCount.Load(),
		TraverseErrors:      b.TraverseErrors.Load(),
		TraverseAvgNanos:    b.getAvgTraverseNanos(),
		TraverseTotalHits:   b.TraverseTotalHits.Load(),
		BatchTraverseCount:  b.BatchTraverseCount.Load(),
		BatchTraverseRays:   b.BatchTraverseRays.Load(),
		BatchTraverseFailed: b.BatchTraverseFailed.Load(),
		SnapshotSaveCount:   b.SnapshotSaveCount.Load(),
		SnapshotSaveErrors:  b.SnapshotSaveErrors.Load(),
		SnapshotLoadCount:   b.SnapshotLoadCount.Load(),
		SnapshotLoadErrors:  b.SnapshotLoadErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgBuildNanos() int64 {
	count := b.BuildCount.Load()
	if count == 0 {
		return 0
	}
	return b.BuildTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgTraverseNanos() int64 {
	count := b.TraverseCount.Load()
	if count == 0 {
		return 0
	}
	return b.TraverseTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount          int64
	BuildErrors         int64
	BuildAvgNanos       int64
	TraverseCount       int64
	TraverseErrors      int64
	TraverseAvgNanos    int64
	TraverseTotalHits   int64
	BatchTraverseCount  int64
	BatchTraverseRays   int64
	BatchTraverseFailed int64
	SnapshotSaveCount   int64
	SnapshotSaveErrors  int64
	SnapshotLoadCount   int64
	SnapshotLoadErrors  int64
}
