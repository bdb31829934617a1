package codec

import (
	"fmt"
	"log/slog"
	"sort"

	"logicsim/internal/domain"
)

const (
	// EdgeClass is the class tag of a serialized edge
	EdgeClass = "Edge"
	// PositionableMixin composes a 2D position onto an element class
	PositionableMixin = "Positionable"
	// PositionableClass is the class tag of a positioned element
	PositionableClass = "PositionableClass"
)

// Registry maps class names to element kinds and mixin names to compositions.
// It is built once and passed to Serialize/Deserialize; it is read-only after
// construction.
type Registry struct {
	classes map[string]domain.Kind
	names   map[domain.Kind]string
	mixins  map[string]bool
}

// DefaultClasses maps the class names used in stored documents to kinds
var DefaultClasses = map[string]domain.Kind{
	"AndGate":  domain.KindAnd,
	"OrGate":   domain.KindOr,
	"NotGate":  domain.KindNot,
	"NandGate": domain.KindNand,
	"NorGate":  domain.KindNor,
	"XorGate":  domain.KindXor,
	"Button":   domain.KindButton,
	"Constant": domain.KindConstant,
}

// NewRegistry creates a registry knowing every element kind and the
// Positionable mixin
func NewRegistry() *Registry {
	r := &Registry{
		classes: make(map[string]domain.Kind),
		names:   make(map[domain.Kind]string),
		mixins:  map[string]bool{PositionableMixin: true},
	}
	for name, kind := range DefaultClasses {
		r.classes[name] = kind
		r.names[kind] = name
	}
	return r
}

// ClassOf returns the class name registered for a kind
func (r *Registry) ClassOf(kind domain.Kind) (string, bool) {
	name, ok := r.names[kind]
	return name, ok
}

// KindOf returns the kind registered under a class name
func (r *Registry) KindOf(class string) (domain.Kind, bool) {
	kind, ok := r.classes[class]
	return kind, ok
}

// Classes returns the registered class names, sorted
func (r *Registry) Classes() []string {
	out := make([]string, 0, len(r.classes))
	for name := range r.classes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Serialize converts a graph into its document form
func (r *Registry) Serialize(g *domain.Graph) (*Document, error) {
	doc := &Document{
		Class: GraphClass,
		Nodes: make(map[string]NodeDocument, g.Len()),
		Edges: make([]EdgeDocument, 0, len(g.Edges())),
	}

	for _, n := range g.Nodes() {
		class, ok := r.ClassOf(n.Type())
		if !ok {
			return nil, fmt.Errorf("%w: kind %s", ErrUnregisteredClass, n.Type())
		}
		doc.Order = append(doc.Order, n.ID())
		doc.Nodes[n.ID()] = NodeDocument{
			Class:         PositionableClass,
			Mixin:         &MixinMarker{Target: class, Source: PositionableMixin},
			ID:            n.ID(),
			Type:          string(n.Type()),
			Inputs:        n.Inputs(),
			Outputs:       n.Outputs(),
			InputsNumber:  n.InputsNumber(),
			OutputsNumber: n.OutputsNumber(),
			X:             n.Position.X,
			Y:             n.Position.Y,
		}
	}

	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, EdgeDocument{
			Class:        EdgeClass,
			Source:       e.Source,
			Target:       e.Target,
			SourceHandle: e.SourceHandle,
			TargetHandle: e.TargetHandle,
		})
	}

	return doc, nil
}

// DecodeReport lists the node entries that could not be restored
type DecodeReport struct {
	Dropped []DroppedNode `json:"dropped"`
}

// DroppedNode is a node entry skipped during deserialization
type DroppedNode struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// Deserialize rebuilds a graph from a document.
//
// A nil or empty document yields a nil graph and no error; callers fall back
// to an empty graph. Entries whose class or mixin is not registered are
// dropped and listed in the report. Nodes follow the document's Order; keys
// missing from it come after, sorted.
func (r *Registry) Deserialize(doc *Document) (*domain.Graph, *DecodeReport, error) {
	report := &DecodeReport{}
	if doc.IsEmpty() {
		return nil, report, nil
	}
	if doc.Class != "" && doc.Class != GraphClass {
		return nil, report, fmt.Errorf("%w: top-level class %q", ErrUnregisteredClass, doc.Class)
	}

	g := domain.NewGraph()

	for _, key := range nodeKeys(doc) {
		node, reason := r.restoreNode(key, doc.Nodes[key])
		if node == nil {
			report.Dropped = append(report.Dropped, DroppedNode{Key: key, Reason: reason})
			continue
		}
		g.AddNode(node)
	}

	for _, e := range doc.Edges {
		g.AddEdge(e.Source, e.Target, e.SourceHandle, e.TargetHandle)
	}

	return g, report, nil
}

// restoreNode picks the concrete kind from the mixin marker or the class tag
func (r *Registry) restoreNode(key string, nd NodeDocument) (*domain.Node, string) {
	var (
		kind       domain.Kind
		positioned bool
	)

	switch {
	case nd.Mixin != nil:
		if nd.Mixin.Target == "" || nd.Mixin.Source == "" {
			return nil, "incomplete __mixin marker"
		}
		if !r.mixins[nd.Mixin.Source] {
			return nil, fmt.Sprintf("unregistered mixin %q", nd.Mixin.Source)
		}
		k, ok := r.KindOf(nd.Mixin.Target)
		if !ok {
			return nil, fmt.Sprintf("unregistered class %q", nd.Mixin.Target)
		}
		kind, positioned = k, true
	case nd.Class == "":
		// hand-written files may carry only the type tag
		k, err := domain.ParseKind(nd.Type)
		if err != nil {
			return nil, fmt.Sprintf("no __class and unknown type %q", nd.Type)
		}
		kind, positioned = k, true
	default:
		k, ok := r.KindOf(nd.Class)
		if !ok {
			return nil, fmt.Sprintf("unregistered class %q", nd.Class)
		}
		kind = k
	}

	id := nd.ID
	if id == "" {
		id = key
	}

	e, err := domain.RestoreElement(id, kind, nd.Inputs, nd.Outputs)
	if err != nil {
		return nil, err.Error()
	}

	node := &domain.Node{Element: e}
	if positioned {
		node.Position = domain.Position{X: nd.X, Y: nd.Y}
	}
	return node, ""
}

// LogReport writes one warning per dropped entry
func (rep *DecodeReport) LogReport(logger *slog.Logger) {
	if rep == nil {
		return
	}
	for _, d := range rep.Dropped {
		logger.Warn("dropped node while decoding circuit", "key", d.Key, "reason", d.Reason)
	}
}

// nodeKeys returns the document's node keys, ordered keys first
func nodeKeys(doc *Document) []string {
	keys := make([]string, 0, len(doc.Nodes))
	seen := make(map[string]bool, len(doc.Nodes))
	for _, key := range doc.Order {
		if _, ok := doc.Nodes[key]; ok && !seen[key] {
			keys = append(keys, key)
			seen[key] = true
		}
	}

	var rest []string
	for key := range doc.Nodes {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
