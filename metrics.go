package citymesh

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
//	    matchCounter   prometheus.Counter
//	    meshHistogram  prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordMatch(candidates int, duration time.Duration, err error) {
//	    p.matchCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordMatch is called after each match operation.
	// candidates is the number of buildings returned, duration is the time
	// taken, err is nil if successful.
	RecordMatch(candidates int, duration time.Duration, err error)

	// RecordMerge is called after each merge operation. err is
	// merger.ErrNoMatch for unmatched objects.
	RecordMerge(duration time.Duration, err error)

	// RecordMesh is called after each mesh build.
	RecordMesh(faces int, duration time.Duration, err error)

	// RecordExport is called after each export.
	RecordExport(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordMatch(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordMerge(time.Duration, error)      {}
func (NoopMetricsCollector) RecordMesh(int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordExport(time.Duration, error)     {}

// NewBasicMetricsCollector creates an in-memory metrics collector.
func NewBasicMetricsCollector() *BasicMetricsCollector {
	return &BasicMetricsCollector{}
}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	MatchCount      atomic.Int64
	MatchErrors     atomic.Int64
	MatchCandidates atomic.Int64
	MatchTotalNanos atomic.Int64
	MergeCount      atomic.Int64
	MergeErrors     atomic.Int64
	MeshCount       atomic.Int64
	MeshErrors      atomic.Int64
	MeshFaces       atomic.Int64
	MeshTotalNanos  atomic.Int64
	ExportCount     atomic.Int64
	ExportErrors    atomic.Int64
}

// RecordMatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMatch(candidates int, duration time.Duration, err error) {
	b.MatchCount.Add(1)
	b.MatchCandidates.Add(int64(candidates))
	b.MatchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.MatchErrors.Add(1)
	}
}

// RecordMerge implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMerge(duration time.Duration, err error) {
	b.MergeCount.Add(1)
	if err != nil {
		b.MergeErrors.Add(1)
	}
}

// RecordMesh implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMesh(faces int, duration time.Duration, err error) {
	b.MeshCount.Add(1)
	b.MeshFaces.Add(int64(faces))
	b.MeshTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.MeshErrors.Add(1)
	}
}

// RecordExport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExport(duration time.Duration, err error) {
	b.ExportCount.Add(1)
	if err != nil {
		b.ExportErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		MatchCount:      b.MatchCount.Load(),
		MatchErrors:     b.MatchErrors.Load(),
		MatchCandidates: b.MatchCandidates.Load(),
		MatchAvgNanos:   avgNanos(b.MatchTotalNanos.Load(), b.MatchCount.Load()),
		MergeCount:      b.MergeCount.Load(),
		MergeErrors:     b.MergeErrors.Load(),
		MeshCount:       b.MeshCount.Load(),
		MeshErrors:      b.MeshErrors.Load(),
		MeshFaces:       b.MeshFaces.Load(),
		MeshAvgNanos:    avgNanos(b.MeshTotalNanos.Load(), b.MeshCount.Load()),
		ExportCount:     b.ExportCount.Load(),
		ExportErrors:    b.ExportErrors.Load(),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	MatchCount      int64
	MatchErrors     int64
	MatchCandidates int64
	MatchAvgNanos   int64
	MergeCount      int64
	MergeErrors     int64
	MeshCount       int64
	MeshErrors      int64
	MeshFaces       int64
	MeshAvgNanos    int64
	ExportCount     int64
	ExportErrors    int64
}
