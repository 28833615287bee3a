// Package observability collects in-process execution metrics for the flow
// engine. Collection is lock-cheap and safe for concurrent runs; snapshots
// compute percentiles on demand.
package observability

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds all engine metrics for one workflow.
type Metrics struct {
	runsStarted   *Counter
	runsFailed    *Counter
	tasksExecuted *Counter
	taskFailures  *Counter
	memoHits      *Counter

	taskDuration *Histogram
	runDuration  *Histogram
}

// NewMetrics creates a Metrics instance with all metrics initialized.
func NewMetrics() *Metrics {
	return &Metrics{
		runsStarted:   &Counter{},
		runsFailed:    &Counter{},
		tasksExecuted: &Counter{},
		taskFailures:  &Counter{},
		memoHits:      &Counter{},
		taskDuration:  NewHistogram(),
		runDuration:   NewHistogram(),
	}
}

func (m *Metrics) RunsStarted() *Counter    { return m.runsStarted }
func (m *Metrics) RunsFailed() *Counter     { return m.runsFailed }
func (m *Metrics) TasksExecuted() *Counter  { return m.tasksExecuted }
func (m *Metrics) TaskFailures() *Counter   { return m.taskFailures }
func (m *Metrics) MemoHits() *Counter       { return m.memoHits }
func (m *Metrics) TaskDuration() *Histogram { return m.taskDuration }
func (m *Metrics) RunDuration() *Histogram  { return m.runDuration }

// Snapshot returns a point-in-time snapshot of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		RunsStarted:   m.runsStarted.Value(),
		RunsFailed:    m.runsFailed.Value(),
		TasksExecuted: m.tasksExecuted.Value(),
		TaskFailures:  m.taskFailures.Value(),
		MemoHits:      m.memoHits.Value(),
		TaskDuration:  m.taskDuration.Snapshot(),
		RunDuration:   m.runDuration.Snapshot(),
	}
}

// Snapshot holds a point-in-time view of all metrics.
type Snapshot struct {
	RunsStarted   int64             `json:"runs_started"`
	RunsFailed    int64             `json:"runs_failed"`
	TasksExecuted int64             `json:"tasks_executed"`
	TaskFailures  int64             `json:"task_failures"`
	MemoHits      int64             `json:"memo_hits"`
	TaskDuration  HistogramSnapshot `json:"task_duration"`
	RunDuration   HistogramSnapshot `json:"run_duration"`
}

// Counter is a monotonically increasing counter.
type Counter struct {
	n atomic.Int64
}

// Inc increments the counter by one.
func (c *Counter) Inc() { c.n.Add(1) }

// Add increments the counter by delta.
func (c *Counter) Add(delta int64) { c.n.Add(delta) }

// Value returns the current count.
func (c *Counter) Value() int64 { return c.n.Load() }

// Histogram tracks the distribution of duration measurements.
// Thread-safe for concurrent observations.
type Histogram struct {
	mu     sync.RWMutex
	values []float64 // stored in microseconds
}

// NewHistogram creates a new histogram.
func NewHistogram() *Histogram {
	return &Histogram{values: make([]float64, 0, 256)}
}

// Observe records a duration measurement.
func (h *Histogram) Observe(d time.Duration) {
	micros := float64(d.Microseconds())
	h.mu.Lock()
	h.values = append(h.values, micros)
	h.mu.Unlock()
}

// Snapshot returns a point-in-time snapshot with percentiles calculated.
func (h *Histogram) Snapshot() HistogramSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.values) == 0 {
		return HistogramSnapshot{}
	}

	sorted := make([]float64, len(h.values))
	copy(sorted, h.values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	return HistogramSnapshot{
		Count: len(sorted),
		Mean:  time.Duration(mean) * time.Microsecond,
		P50:   time.Duration(percentile(sorted, 0.50)) * time.Microsecond,
		P95:   time.Duration(percentile(sorted, 0.95)) * time.Microsecond,
		P99:   time.Duration(percentile(sorted, 0.99)) * time.Microsecond,
		Max:   time.Duration(sorted[len(sorted)-1]) * time.Microsecond,
	}
}

// HistogramSnapshot holds calculated statistics for a histogram.
type HistogramSnapshot struct {
	Count int           `json:"count"`
	Mean  time.Duration `json:"mean"`
	P50   time.Duration `json:"p50"`
	P95   time.Duration `json:"p95"`
	P99   time.Duration `json:"p99"`
	Max   time.Duration `json:"max"`
}

// percentile calculates the p-th percentile from sorted values using
// linear interpolation.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := p * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))

	if lower == upper {
		return sorted[lower]
	}

	weight := rank - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
