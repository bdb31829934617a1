package domain

import "fmt"

// Edge wires the SourceHandle-th output of Source to the TargetHandle-th input of Target.
// An edge has no identity beyond these four fields.
type Edge struct {
	Source       string `json:"source" yaml:"source"`
	Target       string `json:"target" yaml:"target"`
	SourceHandle int    `json:"sourceHandle" yaml:"sourceHandle"`
	TargetHandle int    `json:"targetHandle" yaml:"targetHandle"`
}

// NewEdge creates a new edge
func NewEdge(source, target string, sourceHandle, targetHandle int) Edge {
	return Edge{
		Source:       source,
		Target:       target,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
	}
}

// ID returns the canvas identifier of the edge
func (e Edge) ID() string {
	return fmt.Sprintf("%s-%s-%d-%d", e.Source, e.Target, e.SourceHandle, e.TargetHandle)
}

// Touches reports whether the edge starts or ends at id
func (e Edge) Touches(id string) bool {
	return e.Source == id || e.Target == id
}
