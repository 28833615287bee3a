// Package flow is a stub of the real flow package for analyzer tests.
package flow

import "context"

type Inputs []any

type TaskFunc func(ctx context.Context, in Inputs) (any, error)

type Input interface{ inputName() string }

type Task struct{ name string }

func (t *Task) inputName() string { return t.name }

type Entry struct{ name string }

func (e *Entry) inputName() string { return e.name }

type Registry struct{}

func NewRegistry() *Registry { return &Registry{} }

func (r *Registry) Entry(name string) *Entry { return &Entry{name: name} }

func (r *Registry) Task(name string, fn TaskFunc, inputs ...Input) *Task {
	return &Task{name: name}
}

type Workflow struct{}

func New(endGoals ...*Task) (*Workflow, error) { return &Workflow{}, nil }
