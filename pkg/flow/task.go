// Package flow provides an embedded task-graph execution engine.
//
// Computations are registered as tasks with explicitly declared inputs.
// Each input is either another task's result (a computed dependency) or an
// entry point whose value the caller supplies at run time. A Workflow is
// built once for a set of end goals and can then be run any number of
// times; within one run every distinct task executes at most once and
// independent branches execute concurrently.
//
// Example:
//
//	r := flow.NewRegistry()
//	person := r.Entry("person")
//	greeting := r.Task("create_greeting", greet, person)
//	sayOnce := r.Task("say_once", once, person, greeting)
//	sayTwice := r.Task("say_twice", twice, person, greeting)
//
//	wf, err := flow.New(sayOnce, sayTwice)
//	results, err := wf.Run(ctx, flow.Bindings{person: "Joe Mama"})
package flow

import (
	"context"
	"fmt"
	"sync"
)

// TaskFunc is the signature for task functions. It receives the resolved
// input values in declared order.
type TaskFunc func(ctx context.Context, in Inputs) (any, error)

// Input is a declared dependency of a task: either another *Task (computed)
// or an *Entry (supplied by the caller at run time).
type Input interface {
	inputName() string
}

// Task is an opaque handle to a registered task. Handles are compared by
// identity: referencing the same handle from several declarations yields a
// single shared graph vertex.
type Task struct {
	name   string
	fn     TaskFunc
	inputs []Input
}

func (t *Task) inputName() string { return t.name }

// Name returns the name the task was registered under.
func (t *Task) Name() string { return t.name }

// Entry is an opaque handle to an entry point: a task-level input supplied
// directly by the caller rather than computed.
type Entry struct {
	name string
}

func (e *Entry) inputName() string { return e.name }

// Name returns the name the entry point was registered under.
func (e *Entry) Name() string { return e.name }

// Registry holds task and entry declarations. Declarations are immutable
// once made; a Registry may be shared by any number of workflows.
type Registry struct {
	mu      sync.Mutex
	byName  map[string]*Task
	entries map[string]*Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]*Task),
		entries: make(map[string]*Entry),
	}
}

// Entry declares an entry point and returns its handle. Declaring the same
// entry name twice returns the original handle.
// Panics if name is empty.
func (r *Registry) Entry(name string) *Entry {
	if name == "" {
		panic("flow: Entry() called with empty name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[name]; ok {
		return e
	}
	e := &Entry{name: name}
	r.entries[name] = e
	return e
}

// Task registers a task function with its ordered input list and returns an
// opaque handle. Other registrations reference the handle directly to
// declare a dependency on this task's result.
// Panics if name is empty, fn is nil, any input is nil, or the name was
// already registered.
func (r *Registry) Task(name string, fn TaskFunc, inputs ...Input) *Task {
	if name == "" {
		panic("flow: Task() called with empty name")
	}
	if fn == nil {
		panic(fmt.Sprintf("flow: Task(%q) called with nil function", name))
	}
	for i, in := range inputs {
		if in == nil {
			panic(fmt.Sprintf("flow: Task(%q) input %d is nil", name, i))
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; exists {
		panic(fmt.Sprintf("flow: Task(%q) already registered", name))
	}

	t := &Task{name: name, fn: fn, inputs: append([]Input(nil), inputs...)}
	r.byName[name] = t
	return t
}

// Lookup returns the task registered under name, or nil.
func (r *Registry) Lookup(name string) *Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byName[name]
}

// LookupEntry returns the entry point registered under name, or nil.
func (r *Registry) LookupEntry(name string) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[name]
}

// Inputs holds a task's resolved input values in declared order.
type Inputs []any

// Value returns the i-th input value.
func (in Inputs) Value(i int) any { return in[i] }

// String returns the i-th input as a string, or "" if it isn't one.
func (in Inputs) String(i int) string {
	if v, ok := in[i].(string); ok {
		return v
	}
	return ""
}

// Int returns the i-th input as an int, converting from common numeric types.
func (in Inputs) Int(i int) int {
	switch v := in[i].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Bool returns the i-th input as a bool, or false if it isn't one.
func (in Inputs) Bool(i int) bool {
	if v, ok := in[i].(bool); ok {
		return v
	}
	return false
}

// Strings returns the i-th input as a string slice.
func (in Inputs) Strings(i int) []string {
	if v, ok := in[i].([]string); ok {
		return v
	}
	if v, ok := in[i].([]any); ok {
		strs := make([]string, len(v))
		for j, item := range v {
			strs[j] = fmt.Sprintf("%v", item)
		}
		return strs
	}
	return nil
}
