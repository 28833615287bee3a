// Command flow-demo runs a small greeting pipeline through the flow
// engine, recording run history to SQLite along the way.
//
// With no arguments it uses a built-in flowfile; pass -grid to supply your
// own (its tasks must match the built-in catalog keys).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/example/flowlite/pkg/flow"
	"github.com/example/flowlite/pkg/flowfile"
	"github.com/example/flowlite/pkg/runlog"
)

var (
	gridPath = flag.String("grid", "", "Path to a flowfile (YAML). Empty uses the built-in pipeline.")
	dbPath   = flag.String("db", "flow-demo.db", "Path to the SQLite run log.")
	person   = flag.String("person", "Joe Mama", "Value for the 'person' entry point.")
	runs     = flag.Int("runs", 1, "How many independent runs to execute.")
)

const builtinGrid = `
entries: [person]
tasks:
  - name: create_greeting
    inputs: [person]
  - name: say_once
    inputs: [person, create_greeting]
  - name: say_twice
    inputs: [person, create_greeting]
goals: [say_once, say_twice]
`

func catalog() flowfile.Catalog {
	return flowfile.Catalog{
		"create_greeting": func(ctx context.Context, in flow.Inputs) (any, error) {
			return "Hi " + in.String(0), nil
		},
		"say_once": func(ctx context.Context, in flow.Inputs) (any, error) {
			fmt.Printf("%s %s Once\n", in.String(0), in.String(1))
			return 1, nil
		},
		"say_twice": func(ctx context.Context, in flow.Inputs) (any, error) {
			fmt.Printf("%s %s Twice\n", in.String(0), in.String(1))
			return 2, nil
		},
	}
}

func main() {
	flag.Parse()

	grid := builtinGrid
	if *gridPath != "" {
		data, err := os.ReadFile(*gridPath)
		if err != nil {
			log.Fatalf("Failed to read grid: %v", err)
		}
		grid = string(data)
	}

	loaded, err := flowfile.Load(strings.NewReader(grid), catalog())
	if err != nil {
		log.Fatalf("Failed to load grid: %v", err)
	}
	wf, err := loaded.Workflow()
	if err != nil {
		log.Fatalf("Failed to build workflow: %v", err)
	}
	wf.PrintGraph(os.Stdout)

	recorder, err := runlog.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open run log: %v", err)
	}
	defer recorder.Close()

	bindings, err := loaded.Bind(map[string]any{"person": *person})
	if err != nil {
		log.Fatalf("Failed to bind entries: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for i := 0; i < *runs; i++ {
		results, err := wf.Run(ctx, bindings,
			flow.WithObserver(recorder),
			flow.WithLogger(log.Default()))
		if err != nil {
			log.Fatalf("Run failed: %v", err)
		}
		for _, r := range results {
			if r.Err != nil {
				fmt.Printf("%s: FAILED: %v\n", r.Task.Name(), r.Err)
				continue
			}
			fmt.Printf("%s: %v\n", r.Task.Name(), r.Value)
		}
	}

	stats := wf.Stats()
	fmt.Printf("runs=%d tasks=%d memo-hits=%d p95=%v\n",
		stats.RunsStarted, stats.TasksExecuted, stats.MemoHits, stats.TaskDurationP95)

	history, err := recorder.Runs(ctx)
	if err != nil {
		log.Fatalf("Failed to read run log: %v", err)
	}
	fmt.Printf("run log: %d runs recorded in %s\n", len(history), *dbPath)
}
