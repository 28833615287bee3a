package flow

import "time"

// Observer receives execution events from the engine. It is the interface
// boundary for external collaborators such as run-history recorders and
// progress displays; the engine itself never depends on what observers do
// with the events.
//
// Callbacks may be invoked from multiple goroutines concurrently, except
// RunStarted and RunFinished which bracket the run. Observers must not
// block: slow observers slow the run.
type Observer interface {
	// RunStarted is called once per run, before any task executes.
	RunStarted(runID string, goals []string)

	// TaskStarted is called when a task's function is about to be invoked.
	// Memoized reads of an already-settled task produce no event.
	TaskStarted(runID, task string)

	// TaskFinished is called when a task's slot settles, with the function's
	// duration and its error, if any. Tasks short-circuited by a failed
	// dependency report a zero duration.
	TaskFinished(runID, task string, d time.Duration, err error)

	// RunFinished is called once per run after every end goal has settled.
	// failed is the number of end goals that carry an error.
	RunFinished(runID string, d time.Duration, failed int)
}

// multiObserver fans events out to several observers in order.
type multiObserver []Observer

func (m multiObserver) RunStarted(runID string, goals []string) {
	for _, o := range m {
		o.RunStarted(runID, goals)
	}
}

func (m multiObserver) TaskStarted(runID, task string) {
	for _, o := range m {
		o.TaskStarted(runID, task)
	}
}

func (m multiObserver) TaskFinished(runID, task string, d time.Duration, err error) {
	for _, o := range m {
		o.TaskFinished(runID, task, d, err)
	}
}

func (m multiObserver) RunFinished(runID string, d time.Duration, failed int) {
	for _, o := range m {
		o.RunFinished(runID, d, failed)
	}
}
