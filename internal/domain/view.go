package domain

// GraphView is the flattened snapshot handed to renderers
type GraphView struct {
	Nodes []NodeView `json:"nodes"`
	Edges []EdgeView `json:"edges"`
}

// NodeView represents a node on the canvas
type NodeView struct {
	ID       string   `json:"id"`
	Type     Kind     `json:"type"`
	Position Position `json:"position"`
	Inputs   []bool   `json:"inputsValue"`
	Outputs  []bool   `json:"outputsValue"`
}

// EdgeView represents a wire on the canvas.
// Value is true when the source output feeding it is true.
type EdgeView struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle"`
	TargetHandle string `json:"targetHandle"`
	Value        bool   `json:"value"`
}

// View builds the node view of n
func (n *Node) View() NodeView {
	return NodeView{
		ID:       n.ID(),
		Type:     n.Type(),
		Position: n.Position,
		Inputs:   n.Inputs(),
		Outputs:  n.Outputs(),
	}
}

// NodeViews returns the node views in insertion order
func (g *Graph) NodeViews() []NodeView {
	views := make([]NodeView, 0, len(g.order))
	for _, n := range g.Nodes() {
		views = append(views, n.View())
	}
	return views
}

// EdgeViews returns the edge views in edge order
func (g *Graph) EdgeViews() []EdgeView {
	views := make([]EdgeView, 0, len(g.edges))
	for _, e := range g.edges {
		views = append(views, g.edgeView(e))
	}
	return views
}

// DeriveView builds the complete renderer snapshot
func (g *Graph) DeriveView() *GraphView {
	return &GraphView{
		Nodes: g.NodeViews(),
		Edges: g.EdgeViews(),
	}
}

// EdgeView returns the view of the edge equal to e, if present
func (g *Graph) EdgeView(e Edge) (EdgeView, bool) {
	for _, have := range g.edges {
		if have == e {
			return g.edgeView(have), true
		}
	}
	return EdgeView{}, false
}

func (g *Graph) edgeView(e Edge) EdgeView {
	return EdgeView{
		ID:           e.ID(),
		Source:       e.Source,
		Target:       e.Target,
		SourceHandle: FormatHandle(SourceHandlePrefix, e.SourceHandle),
		TargetHandle: FormatHandle(TargetHandlePrefix, e.TargetHandle),
		Value:        g.signal(e),
	}
}

// signal returns the value carried by an edge; false when the source is missing or unset
func (g *Graph) signal(e Edge) bool {
	source, ok := g.nodes[e.Source]
	if !ok {
		return false
	}
	v, _ := source.Output(e.SourceHandle)
	return v
}
