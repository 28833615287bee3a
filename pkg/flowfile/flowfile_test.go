package flowfile

import (
	"context"
	"strings"
	"testing"

	"github.com/example/flowlite/pkg/flow"
)

const greetingDef = `
entries: [person]
tasks:
  - name: say_once
    inputs: [person, create_greeting]
  - name: create_greeting
    inputs: [person]
  - name: say_twice
    inputs: [person, create_greeting]
goals: [say_once, say_twice]
`

func greetingCatalog(t *testing.T) Catalog {
	t.Helper()
	return Catalog{
		"create_greeting": func(ctx context.Context, in flow.Inputs) (any, error) {
			return "Hi " + in.String(0), nil
		},
		"say_once": func(ctx context.Context, in flow.Inputs) (any, error) {
			return in.String(1) + " (once)", nil
		},
		"say_twice": func(ctx context.Context, in flow.Inputs) (any, error) {
			return in.String(1) + " (twice)", nil
		},
	}
}

func TestLoadAndRun(t *testing.T) {
	// Note say_once is declared before create_greeting: file order must
	// not matter.
	loaded, err := Load(strings.NewReader(greetingDef), greetingCatalog(t))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	wf, err := loaded.Workflow()
	if err != nil {
		t.Fatalf("Workflow() failed: %v", err)
	}

	b, err := loaded.Bind(map[string]any{"person": "Joe Mama"})
	if err != nil {
		t.Fatalf("Bind() failed: %v", err)
	}
	results, err := wf.Run(context.Background(), b)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	vals, err := results.Values()
	if err != nil {
		t.Fatalf("Values() failed: %v", err)
	}
	if vals[0] != "Hi Joe Mama (once)" || vals[1] != "Hi Joe Mama (twice)" {
		t.Errorf("results = %v", vals)
	}
}

func TestBuildErrors(t *testing.T) {
	cases := []struct {
		name    string
		def     string
		wantErr string
	}{
		{
			name:    "no goals",
			def:     "tasks:\n  - name: a\n",
			wantErr: "no goals",
		},
		{
			name:    "unknown input",
			def:     "tasks:\n  - name: a\n    inputs: [nope]\ngoals: [a]\n",
			wantErr: `unknown input "nope"`,
		},
		{
			name:    "unknown catalog function",
			def:     "tasks:\n  - name: a\n    fn: missing\ngoals: [a]\n",
			wantErr: `no catalog function "missing"`,
		},
		{
			name:    "duplicate name",
			def:     "entries: [a]\ntasks:\n  - name: a\ngoals: [a]\n",
			wantErr: `duplicate name "a"`,
		},
		{
			name:    "cycle",
			def:     "tasks:\n  - name: a\n    inputs: [b]\n  - name: b\n    inputs: [a]\ngoals: [a]\n",
			wantErr: "dependency cycle",
		},
		{
			name:    "goal is an entry",
			def:     "entries: [a]\ngoals: [a]\n",
			wantErr: `goal "a" is not a declared task`,
		},
	}

	cat := Catalog{
		"a": func(ctx context.Context, in flow.Inputs) (any, error) { return nil, nil },
		"b": func(ctx context.Context, in flow.Inputs) (any, error) { return nil, nil },
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.def), cat)
			if err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tc.wantErr)
			}
		})
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse(strings.NewReader("tasks:\n  - name: a\n    retries: 3\ngoals: [a]\n"))
	if err == nil {
		t.Fatal("Parse() accepted unknown field")
	}
}

func TestBindRejectsUnknownEntry(t *testing.T) {
	loaded, err := Load(strings.NewReader(greetingDef), greetingCatalog(t))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if _, err := loaded.Bind(map[string]any{"nobody": 1}); err == nil {
		t.Fatal("Bind() accepted unknown entry name")
	}
}
