package flow

// graph is the immutable set of tasks transitively reachable from a set of
// end goals, built once and shared read-only across runs.
type graph struct {
	goals []*Task

	// rank maps every reachable task to its topological rank: 0 for tasks
	// with no computed dependencies, otherwise 1 + max(rank of deps). The
	// scheduler treats rank purely as a hint; execution correctness relies
	// on per-edge waiting.
	rank map[*Task]int

	// entries is the set of entry points reachable through any task's
	// declared inputs. Every one of them must be bound before a run.
	entries map[*Entry]struct{}

	// order holds the reachable tasks in dependency order: every task
	// appears after all tasks it depends on. Dedup is by handle identity,
	// so a task shared by many parents appears exactly once.
	order []*Task
}

// buildGraph walks dependency references depth-first from each end goal,
// deduplicating tasks by handle identity and rejecting cycles. The
// traversal visits each task at most once regardless of how many parents
// reference it; a task found on the active recursion stack is a cycle,
// while a task already fully visited is legal sharing.
func buildGraph(goals []*Task) (*graph, error) {
	if len(goals) == 0 {
		return nil, ErrNoEndGoals
	}

	g := &graph{
		goals:   append([]*Task(nil), goals...),
		rank:    make(map[*Task]int),
		entries: make(map[*Entry]struct{}),
	}

	var stack []*Task
	onStack := make(map[*Task]bool)

	var visit func(t *Task) error
	visit = func(t *Task) error {
		if _, done := g.rank[t]; done {
			return nil
		}
		if onStack[t] {
			return &CycleError{Path: cyclePath(stack, t)}
		}

		onStack[t] = true
		stack = append(stack, t)

		rank := 0
		for _, in := range t.inputs {
			switch dep := in.(type) {
			case *Entry:
				g.entries[dep] = struct{}{}
			case *Task:
				if err := visit(dep); err != nil {
					return err
				}
				if r := g.rank[dep] + 1; r > rank {
					rank = r
				}
			}
		}

		stack = stack[:len(stack)-1]
		delete(onStack, t)

		g.rank[t] = rank
		g.order = append(g.order, t)
		return nil
	}

	for _, goal := range goals {
		if goal == nil {
			panic("flow: nil end goal")
		}
		if err := visit(goal); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// cyclePath extracts the offending cycle from the recursion stack: the
// segment from the repeated task to the top, closed with the repeat.
func cyclePath(stack []*Task, repeat *Task) []string {
	start := 0
	for i, t := range stack {
		if t == repeat {
			start = i
			break
		}
	}
	path := make([]string, 0, len(stack)-start+1)
	for _, t := range stack[start:] {
		path = append(path, t.name)
	}
	return append(path, repeat.name)
}

// size returns the number of distinct reachable tasks.
func (g *graph) size() int { return len(g.order) }
