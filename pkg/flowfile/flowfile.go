// Package flowfile loads workflow declarations from YAML.
//
// A flowfile names the entry points, the tasks with their ordered inputs,
// and the end goals. Task functions themselves stay in Go: the file refers
// to them by catalog key. The loader is a thin declaration frontend over
// flow.Registry — it produces ordinary handles and a workflow built from
// them behaves exactly like one declared in code.
//
// Example definition:
//
//	entries: [person]
//	tasks:
//	  - name: create_greeting
//	    inputs: [person]
//	  - name: say_once
//	    inputs: [person, create_greeting]
//	goals: [say_once]
package flowfile

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/flowlite/pkg/flow"
)

// Definition is the parsed form of a flowfile.
type Definition struct {
	Entries []string  `yaml:"entries"`
	Tasks   []TaskDef `yaml:"tasks"`
	Goals   []string  `yaml:"goals"`
}

// TaskDef declares one task: its name, the catalog key of its function
// (defaults to the task name), and its ordered inputs, each naming another
// task or an entry point.
type TaskDef struct {
	Name   string   `yaml:"name"`
	Fn     string   `yaml:"fn,omitempty"`
	Inputs []string `yaml:"inputs,omitempty"`
}

// Catalog maps function keys referenced by a flowfile to Go task functions.
type Catalog map[string]flow.TaskFunc

// Loaded is a definition instantiated against a catalog: a registry with
// real handles, ready to build workflows from.
type Loaded struct {
	Registry *flow.Registry
	Goals    []*flow.Task
	Entries  map[string]*flow.Entry
}

// Parse reads a YAML definition. Unknown fields are rejected.
func Parse(r io.Reader) (*Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var d Definition
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("flowfile: parsing definition: %w", err)
	}
	return &d, nil
}

// Load parses a definition and instantiates it against the catalog.
func Load(r io.Reader, cat Catalog) (*Loaded, error) {
	d, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return d.Build(cat)
}

// Build instantiates the definition against the catalog, validating names
// and wiring inputs. Because handles must exist before they can be
// referenced, tasks are instantiated in dependency order regardless of
// their order in the file; a dependency cycle leaves tasks unresolvable
// and is reported as such.
func (d *Definition) Build(cat Catalog) (*Loaded, error) {
	if len(d.Goals) == 0 {
		return nil, fmt.Errorf("flowfile: no goals declared")
	}

	names := make(map[string]bool)
	for _, e := range d.Entries {
		if e == "" {
			return nil, fmt.Errorf("flowfile: empty entry name")
		}
		if names[e] {
			return nil, fmt.Errorf("flowfile: duplicate name %q", e)
		}
		names[e] = true
	}
	taskDefs := make(map[string]TaskDef, len(d.Tasks))
	for _, td := range d.Tasks {
		if td.Name == "" {
			return nil, fmt.Errorf("flowfile: task with empty name")
		}
		if names[td.Name] {
			return nil, fmt.Errorf("flowfile: duplicate name %q", td.Name)
		}
		names[td.Name] = true
		taskDefs[td.Name] = td
	}

	for _, td := range d.Tasks {
		key := td.Fn
		if key == "" {
			key = td.Name
		}
		if _, ok := cat[key]; !ok {
			return nil, fmt.Errorf("flowfile: task %q: no catalog function %q", td.Name, key)
		}
		for _, in := range td.Inputs {
			if !names[in] {
				return nil, fmt.Errorf("flowfile: task %q: unknown input %q", td.Name, in)
			}
		}
	}

	l := &Loaded{
		Registry: flow.NewRegistry(),
		Entries:  make(map[string]*flow.Entry, len(d.Entries)),
	}
	for _, e := range d.Entries {
		l.Entries[e] = l.Registry.Entry(e)
	}

	// Instantiate tasks whose inputs are all available, repeating until
	// done. No progress with tasks remaining means a cycle.
	resolved := make(map[string]*flow.Task, len(d.Tasks))
	pending := len(d.Tasks)
	for pending > 0 {
		progressed := false
		for _, td := range d.Tasks {
			if _, done := resolved[td.Name]; done {
				continue
			}
			inputs := make([]flow.Input, 0, len(td.Inputs))
			ready := true
			for _, in := range td.Inputs {
				if e, ok := l.Entries[in]; ok {
					inputs = append(inputs, e)
					continue
				}
				t, ok := resolved[in]
				if !ok {
					ready = false
					break
				}
				inputs = append(inputs, t)
			}
			if !ready {
				continue
			}
			key := td.Fn
			if key == "" {
				key = td.Name
			}
			resolved[td.Name] = l.Registry.Task(td.Name, cat[key], inputs...)
			pending--
			progressed = true
		}
		if !progressed {
			var stuck []string
			for _, td := range d.Tasks {
				if _, done := resolved[td.Name]; !done {
					stuck = append(stuck, td.Name)
				}
			}
			return nil, fmt.Errorf("flowfile: dependency cycle among tasks: %s", strings.Join(stuck, ", "))
		}
	}

	for _, g := range d.Goals {
		t, ok := resolved[g]
		if !ok {
			return nil, fmt.Errorf("flowfile: goal %q is not a declared task", g)
		}
		l.Goals = append(l.Goals, t)
	}
	return l, nil
}

// Workflow builds a flow.Workflow for the definition's declared goals.
func (l *Loaded) Workflow() (*flow.Workflow, error) {
	return flow.New(l.Goals...)
}

// Bind converts name-keyed entry values into flow.Bindings. Every name must
// be a declared entry point.
func (l *Loaded) Bind(values map[string]any) (flow.Bindings, error) {
	b := make(flow.Bindings, len(values))
	for name, v := range values {
		e, ok := l.Entries[name]
		if !ok {
			return nil, fmt.Errorf("flowfile: no entry point %q", name)
		}
		b[e] = v
	}
	return b, nil
}
