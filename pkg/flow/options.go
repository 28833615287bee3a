package flow

import "log"

// RunOption configures a single Run() call.
type RunOption func(*runConfig)

type runConfig struct {
	runID          string
	maxConcurrency int
	observers      []Observer
	logger         *log.Logger
}

// WithRunID sets the run identifier used in events and log lines.
// Defaults to a generated short ID.
func WithRunID(id string) RunOption {
	return func(c *runConfig) {
		c.runID = id
	}
}

// WithMaxConcurrency caps how many task functions may execute at once.
// The cap applies to function invocations only, never to waiting, so any
// positive value is deadlock-free. Defaults to unlimited (0).
func WithMaxConcurrency(n int) RunOption {
	return func(c *runConfig) {
		c.maxConcurrency = n
	}
}

// WithObserver attaches an observer to the run. May be given several times.
func WithObserver(o Observer) RunOption {
	return func(c *runConfig) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// WithLogger enables engine logging to the given logger. The engine is
// silent by default.
func WithLogger(l *log.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = l
	}
}
