// Package domain defines the circuit model of logicsim and its evaluation engine.
//
// # Elements
//
// An Element is either a gate (AND, OR, NOT, NAND, NOR, XOR) computing a pure
// boolean function of its inputs, or an input (BUTTON, CONSTANT) whose single
// output is set from outside. The set of kinds is closed; behavior is selected
// by the element's Variant rather than by type assertions.
//
// # Graph
//
// Graph holds Nodes (an element plus its canvas Position) keyed by ID and the
// Edges wiring an output handle of one node to an input handle of another.
// Duplicate edges are ignored, deleting a node deletes its edges, and edges
// may reference IDs that do not exist.
//
// # Evaluation
//
// Simulate resets every gate and evaluates the circuit backwards from its
// sinks (nodes without outgoing edges). Each gate is computed once per pass,
// after all of its existing upstream nodes. Feedback loops are reported as a
// CycleError instead of being followed.
//
// The package has no I/O and no dependencies beyond the standard library.
package domain
