package domain

// Node is a graph vertex: an element together with its position.
// The two are stored, serialized and deleted as one.
type Node struct {
	*Element
	Position Position
}

// NewNode creates a node of the given kind at a position
func NewNode(id string, kind Kind, pos Position) (*Node, error) {
	e, err := NewElement(id, kind)
	if err != nil {
		return nil, err
	}
	return &Node{Element: e, Position: pos}, nil
}

// MustNode is like NewNode but panics on an unknown kind
func MustNode(id string, kind Kind, pos Position) *Node {
	n, err := NewNode(id, kind, pos)
	if err != nil {
		panic(err)
	}
	return n
}

// SetPosition moves the node without touching its signal values
func (n *Node) SetPosition(x, y float64) {
	n.Position = Position{X: x, Y: y}
}

// GetPosition returns the current placement
func (n *Node) GetPosition() Position {
	return n.Position
}
