// Package a is a test package for the flow linter.
package a

import "flow"

// Test cases

func emptyTaskName(r *flow.Registry, fn flow.TaskFunc) {
	r.Task("", fn) // want "Task called with empty string literal"
}

func emptyEntryName(r *flow.Registry) {
	r.Entry("") // want "Entry called with empty string literal"
}

func nilTaskFunc(r *flow.Registry) {
	r.Task("t", nil) // want "Task called with nil function"
}

func noEndGoals() {
	flow.New() // want "New called with no end goals"
}

func duplicateInputs(r *flow.Registry, fn flow.TaskFunc) {
	a := r.Task("a", fn)
	b := r.Task("b", fn)
	r.Task("c", fn, a, b, a) // want `duplicate input "a"`
}

// Valid cases - should NOT produce warnings

func validTask(r *flow.Registry, fn flow.TaskFunc) {
	a := r.Task("a", fn)
	b := r.Task("b", fn, a)
	r.Task("c", fn, a, b)
}

func validEntry(r *flow.Registry) {
	r.Entry("person")
}

func validNew(r *flow.Registry, fn flow.TaskFunc) {
	flow.New(r.Task("goal", fn))
}
