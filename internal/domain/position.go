package domain

// Position is the 2D placement of a node on the canvas
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NodePosition pairs a node ID with a new placement
type NodePosition struct {
	NodeID string  `json:"node_id" validate:"required"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// NewNodePosition creates a new node position
func NewNodePosition(nodeID string, x, y float64) *NodePosition {
	return &NodePosition{
		NodeID: nodeID,
		X:      x,
		Y:      y,
	}
}

// Position returns the placement part
func (p NodePosition) Position() Position {
	return Position{X: p.X, Y: p.Y}
}
