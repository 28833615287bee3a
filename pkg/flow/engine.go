package flow

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/flowlite/internal/observability"
)

// Per-run slot states. A slot transitions unstarted -> running -> done
// exactly once; after the transition to done, concurrent observers only
// read, never re-trigger evaluation.
const (
	slotUnstarted int32 = iota
	slotRunning
	slotDone
)

// slot holds one task's result within a single run. The state word is the
// atomic claim arbitrating exactly one evaluation attempt; done is closed
// by the winner after value/err are written.
type slot struct {
	state atomic.Int32
	done  chan struct{}
	value any
	err   error
}

// runState is the per-run memo. It is created fresh for every Run call and
// discarded at its end; nothing survives across runs.
type runState struct {
	id    string
	slots map[*Task]*slot
}

func newRunState(id string, g *graph) *runState {
	rs := &runState{id: id, slots: make(map[*Task]*slot, g.size())}
	for _, t := range g.order {
		rs.slots[t] = &slot{done: make(chan struct{})}
	}
	return rs
}

// engine evaluates a graph against one run's bound entry values.
type engine struct {
	graph   *graph
	bound   *boundValues
	obs     Observer // nil when no observers attached
	logger  *log.Logger
	metrics *observability.Metrics
	sem     chan struct{} // nil means unlimited
}

// run evaluates every end goal concurrently and assembles results in
// declaration order regardless of completion order.
func (e *engine) run(ctx context.Context, rs *runState) Results {
	results := make(Results, len(e.graph.goals))

	var wg sync.WaitGroup
	for i, goal := range e.graph.goals {
		wg.Add(1)
		go func(i int, goal *Task) {
			defer wg.Done()
			v, err := e.ensure(ctx, rs, goal)
			results[i] = Result{Task: goal, Value: v, Err: err}
		}(i, goal)
	}
	wg.Wait()
	return results
}

// ensure is the single-flight entry point for one task: the first caller to
// claim the slot evaluates the task, every other concurrent caller waits on
// that one outcome. Callers after settlement read the memoized result.
func (e *engine) ensure(ctx context.Context, rs *runState, t *Task) (any, error) {
	s := rs.slots[t]

	if s.state.Load() == slotDone {
		e.metrics.MemoHits().Inc()
		return s.value, s.err
	}

	if !s.state.CompareAndSwap(slotUnstarted, slotRunning) {
		// Another caller owns the evaluation; wait for its outcome. A
		// canceled waiter reports cancellation locally without touching
		// the slot — the owner settles it.
		select {
		case <-s.done:
			return s.value, s.err
		case <-ctx.Done():
			return nil, &TaskError{Task: t.name, Err: ctx.Err()}
		}
	}

	value, err := e.evaluate(ctx, rs, t)

	s.value, s.err = value, err
	s.state.Store(slotDone)
	close(s.done)

	if err != nil {
		e.metrics.TaskFailures().Inc()
		e.logf("task %q failed: %v", t.name, err)
	}
	return value, err
}

// evaluate resolves t's inputs and invokes its function. Computed inputs
// resolve concurrently with each other; the invocation waits for all of
// them and receives values in declared order. A failed input short-circuits
// the invocation entirely.
func (e *engine) evaluate(ctx context.Context, rs *runState, t *Task) (any, error) {
	args := make(Inputs, len(t.inputs))

	var g errgroup.Group
	for i, in := range t.inputs {
		i := i
		switch dep := in.(type) {
		case *Entry:
			args[i] = e.bound.values[dep]
		case *Task:
			g.Go(func() error {
				v, err := e.ensure(ctx, rs, dep)
				if err != nil {
					return err
				}
				args[i] = v
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		e.emitTaskFinished(rs.id, t.name, 0, err)
		return nil, &TaskError{Task: t.name, Err: fmt.Errorf("dependency failed: %w", err)}
	}

	if err := ctx.Err(); err != nil {
		e.emitTaskFinished(rs.id, t.name, 0, err)
		return nil, &TaskError{Task: t.name, Err: err}
	}

	if e.sem != nil {
		select {
		case e.sem <- struct{}{}:
			defer func() { <-e.sem }()
		case <-ctx.Done():
			err := ctx.Err()
			e.emitTaskFinished(rs.id, t.name, 0, err)
			return nil, &TaskError{Task: t.name, Err: err}
		}
	}

	if e.obs != nil {
		e.obs.TaskStarted(rs.id, t.name)
	}
	start := time.Now()
	value, err := t.fn(ctx, args)
	elapsed := time.Since(start)

	e.metrics.TasksExecuted().Inc()
	e.metrics.TaskDuration().Observe(elapsed)
	e.emitTaskFinished(rs.id, t.name, elapsed, err)

	if err != nil {
		return nil, &TaskError{Task: t.name, Err: err}
	}
	return value, nil
}

func (e *engine) emitTaskFinished(runID, task string, d time.Duration, err error) {
	if e.obs != nil {
		e.obs.TaskFinished(runID, task, d, err)
	}
}

func (e *engine) logf(format string, args ...any) {
	if e.logger != nil {
		e.logger.Printf("flow: "+format, args...)
	}
}
