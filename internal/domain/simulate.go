package domain

import "fmt"

type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

// Simulate recomputes every gate of the graph.
//
// Gates are reset, then each sink is evaluated depth first: a gate reads its
// upstream outputs once they are computed, then applies its function. Inputs
// keep their values. The graph is checked before anything is reset, so a
// cyclic graph or an edge into a missing input slot fails with the previous
// values left in place.
func (g *Graph) Simulate() error {
	if err := g.Validate(); err != nil {
		return err
	}

	for _, id := range g.order {
		g.nodes[id].Reset()
	}

	ev := &evaluator{graph: g, state: make(map[string]visitState, len(g.nodes))}
	for _, sink := range g.Sinks() {
		if err := ev.evaluate(sink); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks that every edge into a gate targets a declared input slot
// and that no gate depends on itself
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		target, ok := g.nodes[e.Target]
		if !ok || !target.IsGate() {
			continue
		}
		if e.TargetHandle < 0 || e.TargetHandle >= target.InputsNumber() {
			return fmt.Errorf("edge %s: %w", e.ID(), &HandleError{
				ElementID: e.Target,
				Handle:    e.TargetHandle,
				Limit:     target.InputsNumber(),
			})
		}
	}
	if path := g.FindCycle(); path != nil {
		return &CycleError{Path: path}
	}
	return nil
}

// FindCycle returns a dependency loop between gates, or nil.
// Edges into inputs and edges from missing nodes carry no dependency.
func (g *Graph) FindCycle() []string {
	deps := make(map[string][]string)
	for _, e := range g.edges {
		target, ok := g.nodes[e.Target]
		if !ok || !target.IsGate() {
			continue
		}
		if _, ok := g.nodes[e.Source]; !ok {
			continue
		}
		deps[e.Target] = append(deps[e.Target], e.Source)
	}

	state := make(map[string]visitState, len(g.nodes))
	var stack []string
	var cycle []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		state[id] = visiting
		stack = append(stack, id)
		for _, next := range deps[id] {
			switch state[next] {
			case visiting:
				cycle = loopFrom(stack, next)
				return true
			case unvisited:
				if dfs(next) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = visited
		return false
	}

	for _, id := range g.order {
		if state[id] == unvisited && dfs(id) {
			return cycle
		}
	}
	return nil
}

// loopFrom cuts the stack at the first occurrence of id and closes the loop
func loopFrom(stack []string, id string) []string {
	for i, s := range stack {
		if s == id {
			path := append([]string{}, stack[i:]...)
			return append(path, id)
		}
	}
	return []string{id, id}
}

// evaluator holds the marks of one Simulate pass.
// A node finished in this pass is not evaluated again.
type evaluator struct {
	graph *Graph
	state map[string]visitState
	stack []string
}

func (ev *evaluator) evaluate(node *Node) error {
	if node.IsInput() {
		return nil
	}

	id := node.ID()
	switch ev.state[id] {
	case visited:
		return nil
	case visiting:
		return &CycleError{Path: loopFrom(ev.stack, id)}
	}
	ev.state[id] = visiting
	ev.stack = append(ev.stack, id)

	for _, edge := range ev.graph.IncomingEdges(id) {
		source, ok := ev.graph.Node(edge.Source)
		if !ok {
			continue
		}
		if err := ev.evaluate(source); err != nil {
			return err
		}
		value, ok := source.Output(edge.SourceHandle)
		if !ok {
			continue
		}
		if err := node.SetInput(edge.TargetHandle, value); err != nil {
			return fmt.Errorf("edge %s: %w", edge.ID(), err)
		}
	}

	if err := node.Compute(); err != nil {
		return err
	}

	ev.stack = ev.stack[:len(ev.stack)-1]
	ev.state[id] = visited
	return nil
}
