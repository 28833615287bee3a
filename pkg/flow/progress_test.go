package flow

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestProgressObserver(t *testing.T) {
	r := NewRegistry()
	bad := r.Task("bad", func(ctx context.Context, in Inputs) (any, error) {
		return nil, errors.New("boom")
	})
	good := r.Task("good", constant("ok"))

	wf, err := New(bad, good)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	var sb strings.Builder
	_, err = wf.Run(context.Background(), nil,
		WithRunID("r1"),
		WithObserver(NewProgressObserver(&sb)))
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	out := sb.String()
	for _, want := range []string{
		"r1: started",
		"r1: + good",
		"r1: x bad: boom",
		"1 goal(s) failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("progress output missing %q:\n%s", want, out)
		}
	}
}
