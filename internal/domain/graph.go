package domain

// Graph owns the elements of a circuit and the edges between their handles.
// It is not safe for concurrent use.
type Graph struct {
	nodes map[string]*Node
	order []string
	edges []Edge
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		order: make([]string, 0),
		edges: make([]Edge, 0),
	}
}

// AddNode inserts a node keyed by its ID. A node with the same ID is replaced.
func (g *Graph) AddNode(node *Node) {
	id := node.ID()
	if _, exists := g.nodes[id]; !exists {
		g.order = append(g.order, id)
	}
	g.nodes[id] = node
}

// AddEdge appends an edge unless an identical one exists.
// Endpoints are not checked; dangling edges are skipped during evaluation.
// Reports whether the edge was appended.
func (g *Graph) AddEdge(source, target string, sourceHandle, targetHandle int) bool {
	edge := NewEdge(source, target, sourceHandle, targetHandle)
	for _, e := range g.edges {
		if e == edge {
			return false
		}
	}
	g.edges = append(g.edges, edge)
	return true
}

// DeleteNode removes a node and every edge touching it.
// Reports whether the node existed.
func (g *Graph) DeleteNode(id string) bool {
	_, existed := g.nodes[id]
	if existed {
		delete(g.nodes, id)
		for i, oid := range g.order {
			if oid == id {
				g.order = append(g.order[:i], g.order[i+1:]...)
				break
			}
		}
	}

	kept := g.edges[:0]
	for _, e := range g.edges {
		if !e.Touches(id) {
			kept = append(kept, e)
		}
	}
	g.edges = kept
	return existed
}

// DeleteEdge removes edges matching all four fields. Returns the number removed.
func (g *Graph) DeleteEdge(source, target string, sourceHandle, targetHandle int) int {
	edge := NewEdge(source, target, sourceHandle, targetHandle)
	removed := 0
	kept := g.edges[:0]
	for _, e := range g.edges {
		if e == edge {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	g.edges = kept
	return removed
}

// Node returns the node with the given ID
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns a snapshot of the nodes in insertion order
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Edges returns a copy of the edge list
func (g *Graph) Edges() []Edge {
	return append([]Edge{}, g.edges...)
}

// Neighbors returns the outgoing edges of id
func (g *Graph) Neighbors(id string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Source == id {
			out = append(out, e)
		}
	}
	return out
}

// IncomingEdges returns the edges ending at id
func (g *Graph) IncomingEdges(id string) []Edge {
	var in []Edge
	for _, e := range g.edges {
		if e.Target == id {
			in = append(in, e)
		}
	}
	return in
}

// Sinks returns the nodes with no outgoing edges, in insertion order
func (g *Graph) Sinks() []*Node {
	hasOut := make(map[string]bool, len(g.edges))
	for _, e := range g.edges {
		hasOut[e.Source] = true
	}
	var sinks []*Node
	for _, id := range g.order {
		if !hasOut[id] {
			sinks = append(sinks, g.nodes[id])
		}
	}
	return sinks
}

// Len returns the number of nodes
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Clear removes every node and edge
func (g *Graph) Clear() {
	g.nodes = make(map[string]*Node)
	g.order = g.order[:0]
	g.edges = g.edges[:0]
}
