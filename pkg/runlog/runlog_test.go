package runlog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/example/flowlite/pkg/flow"
)

func openRecorder(t *testing.T) *Recorder {
	t.Helper()
	rec, err := Open(filepath.Join(t.TempDir(), "runlog.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { rec.Close() })
	return rec
}

func TestRecorderCapturesRun(t *testing.T) {
	rec := openRecorder(t)

	r := flow.NewRegistry()
	person := r.Entry("person")
	greeting := r.Task("create_greeting", func(ctx context.Context, in flow.Inputs) (any, error) {
		return "Hi " + in.String(0), nil
	}, person)
	goal := r.Task("say", func(ctx context.Context, in flow.Inputs) (any, error) {
		return in.String(0), nil
	}, greeting)

	wf, err := flow.New(goal)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	_, err = wf.Run(context.Background(), flow.Bindings{person: "Joe Mama"},
		flow.WithRunID("run-test"), flow.WithObserver(rec))
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	runs, err := rec.Runs(context.Background())
	if err != nil {
		t.Fatalf("Runs() failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("recorded %d runs, want 1", len(runs))
	}
	run := runs[0]
	if run.ID != "run-test" {
		t.Errorf("run ID = %q, want run-test", run.ID)
	}
	if len(run.Goals) != 1 || run.Goals[0] != "say" {
		t.Errorf("goals = %v, want [say]", run.Goals)
	}
	if run.FailedGoals != 0 {
		t.Errorf("failed goals = %d, want 0", run.FailedGoals)
	}
	if run.FinishedAt.IsZero() {
		t.Error("run has no finish time")
	}

	tasks, err := rec.Tasks(context.Background(), "run-test")
	if err != nil {
		t.Fatalf("Tasks() failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("recorded %d task executions, want 2", len(tasks))
	}
	if tasks[0].Task != "create_greeting" || tasks[1].Task != "say" {
		t.Errorf("task order = %s, %s", tasks[0].Task, tasks[1].Task)
	}
	for _, task := range tasks {
		if task.Error != "" {
			t.Errorf("task %s recorded error %q", task.Task, task.Error)
		}
	}
}

func TestRecorderCapturesFailures(t *testing.T) {
	rec := openRecorder(t)

	r := flow.NewRegistry()
	boom := errors.New("boom")
	bad := r.Task("bad", func(ctx context.Context, in flow.Inputs) (any, error) {
		return nil, boom
	})
	goal := r.Task("goal", func(ctx context.Context, in flow.Inputs) (any, error) {
		return nil, nil
	}, bad)

	wf, err := flow.New(goal)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	results, err := wf.Run(context.Background(), nil,
		flow.WithRunID("run-fail"), flow.WithObserver(rec))
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if results.Err() == nil {
		t.Fatal("expected goal failure")
	}

	runs, err := rec.Runs(context.Background())
	if err != nil {
		t.Fatalf("Runs() failed: %v", err)
	}
	if runs[0].FailedGoals != 1 {
		t.Errorf("failed goals = %d, want 1", runs[0].FailedGoals)
	}

	tasks, err := rec.Tasks(context.Background(), "run-fail")
	if err != nil {
		t.Fatalf("Tasks() failed: %v", err)
	}
	// "bad" executed and failed; "goal" short-circuited with a recorded
	// dependency error.
	if len(tasks) != 2 {
		t.Fatalf("recorded %d task executions, want 2", len(tasks))
	}
	if tasks[0].Task != "bad" || tasks[0].Error == "" {
		t.Errorf("task[0] = %+v, want failed 'bad'", tasks[0])
	}
	if tasks[1].Task != "goal" || tasks[1].Error == "" {
		t.Errorf("task[1] = %+v, want short-circuited 'goal'", tasks[1])
	}
}

func TestRecorderSharedAcrossRuns(t *testing.T) {
	rec := openRecorder(t)

	r := flow.NewRegistry()
	a := r.Task("a", func(ctx context.Context, in flow.Inputs) (any, error) {
		return nil, nil
	})
	wf, err := flow.New(a)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := wf.Run(context.Background(), nil, flow.WithObserver(rec)); err != nil {
			t.Fatalf("Run() %d failed: %v", i, err)
		}
	}

	runs, err := rec.Runs(context.Background())
	if err != nil {
		t.Fatalf("Runs() failed: %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("recorded %d runs, want 3", len(runs))
	}
}
