package domain

import "fmt"

// Kind is the type tag of a circuit element
type Kind string

const (
	KindAnd      Kind = "AND"
	KindOr       Kind = "OR"
	KindNot      Kind = "NOT"
	KindNand     Kind = "NAND"
	KindNor      Kind = "NOR"
	KindXor      Kind = "XOR"
	KindButton   Kind = "BUTTON"
	KindConstant Kind = "CONSTANT"
)

// Variant is the behavioral family of an element
type Variant int

const (
	VariantGate Variant = iota + 1
	VariantInput
)

// String returns the variant name
func (v Variant) String() string {
	switch v {
	case VariantGate:
		return "gate"
	case VariantInput:
		return "input"
	default:
		return "unknown"
	}
}

// gateFunc is the pure boolean function of a gate
type gateFunc func(in []bool) bool

// kindSpec describes the fixed shape of a kind
type kindSpec struct {
	variant Variant
	inputs  int
	outputs int
	fn      gateFunc // gates only
	initial bool     // inputs only
}

func newGate(inputs int, fn gateFunc) kindSpec {
	return kindSpec{variant: VariantGate, inputs: inputs, outputs: 1, fn: fn}
}

func newInput(initial bool) kindSpec {
	return kindSpec{variant: VariantInput, inputs: 0, outputs: 1, initial: initial}
}

// kinds is the closed set of element kinds
var kinds = map[Kind]kindSpec{
	KindAnd:      newGate(2, func(in []bool) bool { return in[0] && in[1] }),
	KindOr:       newGate(2, func(in []bool) bool { return in[0] || in[1] }),
	KindNot:      newGate(1, func(in []bool) bool { return !in[0] }),
	KindNand:     newGate(2, func(in []bool) bool { return !(in[0] && in[1]) }),
	KindNor:      newGate(2, func(in []bool) bool { return !(in[0] || in[1]) }),
	KindXor:      newGate(2, func(in []bool) bool { return in[0] != in[1] }),
	KindButton:   newInput(false),
	KindConstant: newInput(true),
}

// Kinds returns every known kind in a stable order
func Kinds() []Kind {
	return []Kind{KindAnd, KindOr, KindNot, KindNand, KindNor, KindXor, KindButton, KindConstant}
}

// ParseKind validates a type tag
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := kinds[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Variant returns the behavioral family of the kind
func (k Kind) Variant() Variant {
	return kinds[k].variant
}

// Element is a gate or an input of a circuit.
// Inputs and outputs never grow past the counts fixed by the kind.
type Element struct {
	id      string
	kind    Kind
	spec    kindSpec
	inputs  []bool
	outputs []bool
}

// NewElement creates an element of the given kind.
// Inputs start with their initial value, gates start empty.
func NewElement(id string, kind Kind) (*Element, error) {
	spec, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	e := &Element{id: id, kind: kind, spec: spec}
	if spec.variant == VariantInput {
		e.outputs = []bool{spec.initial}
	}
	return e, nil
}

// RestoreElement rebuilds an element from stored values.
// Values beyond the kind's declared counts are discarded.
func RestoreElement(id string, kind Kind, inputs, outputs []bool) (*Element, error) {
	e, err := NewElement(id, kind)
	if err != nil {
		return nil, err
	}
	e.inputs = clip(inputs, e.spec.inputs)
	if e.spec.variant == VariantInput && len(outputs) == 0 {
		return e, nil
	}
	e.outputs = clip(outputs, e.spec.outputs)
	return e, nil
}

func clip(values []bool, limit int) []bool {
	if len(values) == 0 {
		return nil
	}
	if len(values) > limit {
		values = values[:limit]
	}
	return append([]bool(nil), values...)
}

// ID returns the element identifier
func (e *Element) ID() string { return e.id }

// Type returns the element kind
func (e *Element) Type() Kind { return e.kind }

// Inputs returns a copy of the current input values
func (e *Element) Inputs() []bool { return append([]bool{}, e.inputs...) }

// Outputs returns a copy of the current output values
func (e *Element) Outputs() []bool { return append([]bool{}, e.outputs...) }

// InputsNumber returns the declared number of inputs
func (e *Element) InputsNumber() int { return e.spec.inputs }

// OutputsNumber returns the declared number of outputs
func (e *Element) OutputsNumber() int { return e.spec.outputs }

// Variant returns the behavioral family
func (e *Element) Variant() Variant { return e.spec.variant }

// IsGate reports whether the element computes its outputs
func (e *Element) IsGate() bool { return e.spec.variant == VariantGate }

// IsInput reports whether the element's output is set externally
func (e *Element) IsInput() bool { return e.spec.variant == VariantInput }

// Output returns the value at an output handle and whether it is set
func (e *Element) Output(handle int) (bool, bool) {
	if handle < 0 || handle >= len(e.outputs) {
		return false, false
	}
	return e.outputs[handle], true
}

// SetInput writes a value into an input slot of a gate.
// Slots skipped over while growing the sequence read as false.
func (e *Element) SetInput(handle int, value bool) error {
	if !e.IsGate() {
		return fmt.Errorf("%w: %s is %s", ErrNotGate, e.id, e.kind)
	}
	if handle < 0 || handle >= e.spec.inputs {
		return &HandleError{ElementID: e.id, Handle: handle, Limit: e.spec.inputs}
	}
	for len(e.inputs) <= handle {
		e.inputs = append(e.inputs, false)
	}
	e.inputs[handle] = value
	return nil
}

// Compute evaluates the gate function over the current inputs
func (e *Element) Compute() error {
	if !e.IsGate() {
		return fmt.Errorf("%w: %s is %s", ErrNotGate, e.id, e.kind)
	}
	in := make([]bool, e.spec.inputs)
	copy(in, e.inputs)
	e.outputs = []bool{e.spec.fn(in)}
	return nil
}

// Reset clears the inputs and outputs of a gate. Inputs are left untouched.
func (e *Element) Reset() {
	if !e.IsGate() {
		return
	}
	e.inputs = nil
	e.outputs = nil
}

// SetValue overwrites the output of an input element
func (e *Element) SetValue(value bool) error {
	if !e.IsInput() {
		return fmt.Errorf("%w: %s is %s", ErrNotInput, e.id, e.kind)
	}
	e.outputs = []bool{value}
	return nil
}

// Value returns the output of an input element
func (e *Element) Value() bool {
	v, _ := e.Output(0)
	return v
}
