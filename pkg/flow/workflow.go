package flow

import (
	"context"
	"time"

	"github.com/example/flowlite/internal/observability"

	"github.com/example/flowlite/pkg/id"
)

// Workflow holds a built dependency graph for a fixed, ordered set of end
// goals. Building happens once; the graph is immutable afterwards and a
// Workflow may be run any number of times, concurrently, each run with its
// own entry bindings and fresh memo.
type Workflow struct {
	graph   *graph
	metrics *observability.Metrics
}

// New builds the dependency graph reachable from the given end goals.
// It fails with ErrNoEndGoals when called with none, and with *CycleError
// when any task depends on itself, directly or transitively. No task
// function runs during construction.
func New(endGoals ...*Task) (*Workflow, error) {
	g, err := buildGraph(endGoals)
	if err != nil {
		return nil, err
	}
	return &Workflow{graph: g, metrics: observability.NewMetrics()}, nil
}

// Result is the outcome of a single end goal: its value on success or its
// error on failure. Each slot carries success-or-failure independently, so
// callers choose between failing the whole run on the first error and
// collecting per-goal outcomes.
type Result struct {
	Task  *Task
	Value any
	Err   error
}

// Results holds end-goal outcomes in declaration order.
type Results []Result

// Err returns the first end-goal failure in declaration order, or nil.
func (rs Results) Err() error {
	for _, r := range rs {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

// Values returns every end goal's value in declaration order, or the first
// failure.
func (rs Results) Values() ([]any, error) {
	if err := rs.Err(); err != nil {
		return nil, err
	}
	vals := make([]any, len(rs))
	for i, r := range rs {
		vals[i] = r.Value
	}
	return vals, nil
}

// Run binds the entry values, executes the graph, and returns one Result
// per end goal in the order the goals were given to New. Within the run
// every distinct task executes at most once and independent branches
// execute concurrently; one end goal's failure does not prevent unrelated
// end goals from completing.
//
// Run returns a non-nil error only for bind failures (*UnboundEntryError),
// reported before anything executes. Task failures surface per goal in the
// Results.
func (w *Workflow) Run(ctx context.Context, b Bindings, opts ...RunOption) (Results, error) {
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.runID == "" {
		cfg.runID = id.Run()
	}

	bound, err := bind(w.graph, b)
	if err != nil {
		return nil, err
	}

	e := &engine{
		graph:   w.graph,
		bound:   bound,
		logger:  cfg.logger,
		metrics: w.metrics,
	}
	switch len(cfg.observers) {
	case 0:
	case 1:
		e.obs = cfg.observers[0]
	default:
		e.obs = multiObserver(cfg.observers)
	}
	if cfg.maxConcurrency > 0 {
		e.sem = make(chan struct{}, cfg.maxConcurrency)
	}

	goals := make([]string, len(w.graph.goals))
	for i, t := range w.graph.goals {
		goals[i] = t.name
	}

	w.metrics.RunsStarted().Inc()
	e.logf("run %s: %d tasks, goals %v", cfg.runID, w.graph.size(), goals)
	if e.obs != nil {
		e.obs.RunStarted(cfg.runID, goals)
	}

	start := time.Now()
	results := e.run(ctx, newRunState(cfg.runID, w.graph))
	elapsed := time.Since(start)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		w.metrics.RunsFailed().Inc()
	}
	w.metrics.RunDuration().Observe(elapsed)
	if e.obs != nil {
		e.obs.RunFinished(cfg.runID, elapsed, failed)
	}
	e.logf("run %s: finished in %v, %d/%d goals failed", cfg.runID, elapsed, failed, len(results))

	return results, nil
}

// Size returns the number of distinct tasks reachable from the end goals.
func (w *Workflow) Size() int { return w.graph.size() }

// Stats is a point-in-time view of a workflow's execution metrics,
// aggregated across all of its runs.
type Stats struct {
	RunsStarted   int64
	RunsFailed    int64
	TasksExecuted int64
	TaskFailures  int64
	MemoHits      int64

	TaskDurationP50 time.Duration
	TaskDurationP95 time.Duration
	RunDurationP50  time.Duration
	RunDurationP95  time.Duration
}

// Stats returns execution metrics aggregated over every run of this
// workflow so far.
func (w *Workflow) Stats() Stats {
	s := w.metrics.Snapshot()
	return Stats{
		RunsStarted:     s.RunsStarted,
		RunsFailed:      s.RunsFailed,
		TasksExecuted:   s.TasksExecuted,
		TaskFailures:    s.TaskFailures,
		MemoHits:        s.MemoHits,
		TaskDurationP50: s.TaskDuration.P50,
		TaskDurationP95: s.TaskDuration.P95,
		RunDurationP50:  s.RunDuration.P50,
		RunDurationP95:  s.RunDuration.P95,
	}
}
