package flow

import "sort"

// Bindings maps entry points to the concrete values supplied for one run.
// Each entry point takes exactly one value per run; callers wanting several
// runs over different values invoke Run once per value set.
type Bindings map[*Entry]any

// boundValues is the validated, immutable view of one run's entry values,
// restricted to entries actually reachable in the graph.
type boundValues struct {
	values map[*Entry]any
}

// bind validates that every entry point reachable in the graph has a
// supplied value. Missing entries are collected eagerly, before anything
// executes, and reported together. Bindings for entries not reachable in
// the graph are accepted and ignored, so a binding set prepared for a
// superset of registered tasks keeps working.
func bind(g *graph, b Bindings) (*boundValues, error) {
	var missing []string
	values := make(map[*Entry]any, len(g.entries))
	for e := range g.entries {
		v, ok := b[e]
		if !ok {
			missing = append(missing, e.name)
			continue
		}
		values[e] = v
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &UnboundEntryError{Missing: missing}
	}
	return &boundValues{values: values}, nil
}
