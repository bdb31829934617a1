package codec

import "logicsim/internal/domain"

// GraphClass is the class tag of a serialized graph
const GraphClass = "Graph"

// Document is the durable form of a circuit.
// Every node entry carries its class and, when positioned, the mixin marker
// naming the base class and the composition applied to it.
type Document struct {
	Class string                  `json:"__class" yaml:"__class"`
	Nodes map[string]NodeDocument `json:"nodes" yaml:"nodes"`
	Edges []EdgeDocument          `json:"edges" yaml:"edges"`
	// Order lists node keys in insertion order
	Order []string `json:"order,omitempty" yaml:"order,omitempty"`
}

// NodeDocument is one serialized element
type NodeDocument struct {
	Class         string       `json:"__class" yaml:"__class"`
	Mixin         *MixinMarker `json:"__mixin,omitempty" yaml:"__mixin,omitempty"`
	ID            string       `json:"id" yaml:"id"`
	Type          string       `json:"type" yaml:"type"`
	Inputs        []bool       `json:"inputs" yaml:"inputs"`
	Outputs       []bool       `json:"outputs" yaml:"outputs"`
	InputsNumber  int          `json:"inputsNumber" yaml:"inputsNumber"`
	OutputsNumber int          `json:"outputsNumber" yaml:"outputsNumber"`
	X             float64      `json:"x,omitempty" yaml:"x,omitempty"`
	Y             float64      `json:"y,omitempty" yaml:"y,omitempty"`
}

// MixinMarker records which composition was applied to which base class
type MixinMarker struct {
	Target string `json:"target" yaml:"target"`
	Source string `json:"source" yaml:"source"`
}

// EdgeDocument is one serialized edge
type EdgeDocument struct {
	Class        string `json:"__class,omitempty" yaml:"__class,omitempty"`
	Source       string `json:"source" yaml:"source"`
	Target       string `json:"target" yaml:"target"`
	SourceHandle int    `json:"sourceHandle" yaml:"sourceHandle"`
	TargetHandle int    `json:"targetHandle" yaml:"targetHandle"`
}

// IsEmpty reports whether the document holds no graph data at all
func (d *Document) IsEmpty() bool {
	return d == nil || (d.Class == "" && len(d.Nodes) == 0 && len(d.Edges) == 0)
}

// Edge converts the document form to a domain edge
func (e EdgeDocument) Edge() domain.Edge {
	return domain.NewEdge(e.Source, e.Target, e.SourceHandle, e.TargetHandle)
}
