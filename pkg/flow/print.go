package flow

import (
	"fmt"
	"io"
	"strings"
)

// PrintGraph writes a textual representation of the task graph in
// dependency order: every task appears after the tasks it depends on.
func (w *Workflow) PrintGraph(out io.Writer) {
	fmt.Fprintln(out, "Workflow graph:")
	for _, t := range w.graph.order {
		if len(t.inputs) == 0 {
			fmt.Fprintf(out, "  [%d] %s (no inputs)\n", w.graph.rank[t], t.name)
			continue
		}
		names := make([]string, len(t.inputs))
		for i, in := range t.inputs {
			switch in.(type) {
			case *Entry:
				names[i] = "entry:" + in.inputName()
			default:
				names[i] = in.inputName()
			}
		}
		fmt.Fprintf(out, "  [%d] %s <- %s\n", w.graph.rank[t], t.name, strings.Join(names, ", "))
	}
	goals := make([]string, len(w.graph.goals))
	for i, t := range w.graph.goals {
		goals[i] = t.name
	}
	fmt.Fprintf(out, "  goals: %s\n", strings.Join(goals, ", "))
}
