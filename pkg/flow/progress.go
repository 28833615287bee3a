package flow

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// progressObserver writes a line per execution event, for interactive use.
type progressObserver struct {
	mu  sync.Mutex
	out io.Writer
}

// NewProgressObserver returns an observer that renders run progress to out,
// one line per event. Lines from concurrent tasks are serialized.
func NewProgressObserver(out io.Writer) Observer {
	return &progressObserver{out: out}
}

func (p *progressObserver) RunStarted(runID string, goals []string) {
	p.printf("%s: started, goals %v\n", runID, goals)
}

func (p *progressObserver) TaskStarted(runID, task string) {
	p.printf("%s: > %s\n", runID, task)
}

func (p *progressObserver) TaskFinished(runID, task string, d time.Duration, err error) {
	if err != nil {
		p.printf("%s: x %s: %v\n", runID, task, err)
		return
	}
	p.printf("%s: + %s (%v)\n", runID, task, d.Round(time.Microsecond))
}

func (p *progressObserver) RunFinished(runID string, d time.Duration, failed int) {
	if failed > 0 {
		p.printf("%s: finished in %v, %d goal(s) failed\n", runID, d.Round(time.Microsecond), failed)
		return
	}
	p.printf("%s: finished in %v\n", runID, d.Round(time.Microsecond))
}

func (p *progressObserver) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}
