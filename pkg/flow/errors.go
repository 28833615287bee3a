package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoEndGoals is returned when a workflow is built with zero end goals.
	ErrNoEndGoals = errors.New("no end goals supplied")
)

// CycleError is returned at build time when a task depends, directly or
// transitively, on itself. Path holds the task names along the cycle,
// beginning and ending with the same task.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Path, " -> "))
}

// UnboundEntryError is returned at bind time when one or more entry points
// reachable in the graph lack a supplied value. Missing holds every missing
// entry name, sorted, not just the first.
type UnboundEntryError struct {
	Missing []string
}

func (e *UnboundEntryError) Error() string {
	return fmt.Sprintf("unbound entry points: %s", strings.Join(e.Missing, ", "))
}

// TaskError wraps a failure during a task's evaluation, tagged with the
// task's name. It is stored in the task's per-run result slot, so every
// reference to the task within the run observes the identical failure.
//
// A dependent whose dependency failed carries a TaskError wrapping the
// dependency's TaskError; the chain identifies the originating task via
// errors.As.
type TaskError struct {
	Task string
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %q: %v", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// IsCanceled reports whether err represents a task evaluation abandoned due
// to run cancellation or timeout.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// RootCause walks a TaskError chain and returns the name of the task where
// the failure originated, along with the underlying error. Returns "" if
// err carries no TaskError.
func RootCause(err error) (string, error) {
	var last *TaskError
	for {
		var te *TaskError
		if !errors.As(err, &te) {
			break
		}
		last = te
		err = te.Err
	}
	if last == nil {
		return "", err
	}
	return last.Task, last.Err
}
