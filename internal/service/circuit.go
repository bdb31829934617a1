package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"logicsim/internal/codec"
	"logicsim/internal/domain"
	"logicsim/internal/repository"
)

// DefaultCircuitName is the storage key used when none is configured
const DefaultCircuitName = "default"

// Options configures a CircuitService
type Options struct {
	// Name is the storage key of the circuit
	Name     string
	Registry *codec.Registry
	Metrics  *Metrics
	Logger   *slog.Logger
}

// CircuitService owns one circuit graph.
//
// Every mutation settles the circuit: the graph is simulated, the document is
// saved and an event is published. A failed simulation leaves the mutation
// applied and is returned to the caller.
type CircuitService struct {
	mu       sync.Mutex
	name     string
	graph    *domain.Graph
	repo     repository.Repository
	registry *codec.Registry
	eventBus *EventBus
	metrics  *Metrics
	logger   *slog.Logger
}

// ImportResult represents the result of an import operation
type ImportResult struct {
	Format  string              `json:"format"`
	Nodes   int                 `json:"nodes"`
	Edges   int                 `json:"edges"`
	Dropped []codec.DroppedNode `json:"dropped,omitempty"`
}

// NewCircuitService creates a service holding an empty circuit.
// repo and eventBus may be nil for a session that neither persists nor publishes.
func NewCircuitService(repo repository.Repository, eventBus *EventBus, opts Options) *CircuitService {
	if opts.Name == "" {
		opts.Name = DefaultCircuitName
	}
	if opts.Registry == nil {
		opts.Registry = codec.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &CircuitService{
		name:     opts.Name,
		graph:    domain.NewGraph(),
		repo:     repo,
		registry: opts.Registry,
		eventBus: eventBus,
		metrics:  opts.Metrics,
		logger:   opts.Logger.With("circuit", opts.Name),
	}
}

// Name returns the storage key of the circuit
func (s *CircuitService) Name() string {
	return s.name
}

// Load replaces the in-memory circuit with the stored document, if any.
// A stored circuit that fails to simulate is still loaded.
func (s *CircuitService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo == nil {
		return nil
	}

	doc, err := s.repo.LoadDocument(ctx, s.name)
	if err != nil {
		return fmt.Errorf("load circuit %s: %w", s.name, err)
	}

	g, report, err := s.registry.Deserialize(doc)
	if err != nil {
		return fmt.Errorf("decode circuit %s: %w", s.name, err)
	}
	report.LogReport(s.logger)
	if g == nil {
		g = domain.NewGraph()
	}
	s.graph = g

	if err := s.simulate(); err != nil {
		s.logger.Warn("stored circuit does not settle", "error", err)
	}
	s.logger.Info("circuit loaded", "nodes", g.Len(), "edges", len(g.Edges()))
	return nil
}

// Circuit returns the current renderer snapshot
func (s *CircuitService) Circuit() *domain.GraphView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.DeriveView()
}

// Nodes returns the node views in insertion order
func (s *CircuitService) Nodes() []domain.NodeView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.NodeViews()
}

// Edges returns the edge views
func (s *CircuitService) Edges() []domain.EdgeView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.EdgeViews()
}

// Node returns the view of a single node
func (s *CircuitService) Node(id string) (domain.NodeView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.graph.Node(id)
	if !ok {
		return domain.NodeView{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	return node.View(), nil
}

// Circuits lists the stored circuits
func (s *CircuitService) Circuits(ctx context.Context) ([]repository.CircuitInfo, error) {
	if s.repo == nil {
		return []repository.CircuitInfo{}, nil
	}
	return s.repo.ListCircuits(ctx)
}

// AddNode places a new element of the given kind with a fresh id
func (s *CircuitService) AddNode(ctx context.Context, kind string, pos domain.Position) (domain.NodeView, error) {
	k, err := domain.ParseKind(kind)
	if err != nil {
		return domain.NodeView{}, err
	}

	node, err := domain.NewNode(uuid.NewString(), k, pos)
	if err != nil {
		return domain.NodeView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.graph.AddNode(node)
	err = s.settle(ctx, EventNodeAdded, map[string]any{"node_id": node.ID(), "type": k})
	return node.View(), err
}

// AddEdge wires a source output to a target input.
// Handles use the "source#<n>" and "target#<n>" forms. Both endpoints must
// exist, and a gate target must declare the input slot. An edge closing a
// feedback loop is refused with a *domain.CycleError and the circuit is left
// as it was. Adding an edge that already exists changes nothing.
func (s *CircuitService) AddEdge(ctx context.Context, source, target, sourceHandle, targetHandle string) (domain.EdgeView, error) {
	sh, th, err := parseHandles(sourceHandle, targetHandle)
	if err != nil {
		return domain.EdgeView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.graph.Node(source); !ok {
		return domain.EdgeView{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, source)
	}
	tn, ok := s.graph.Node(target)
	if !ok {
		return domain.EdgeView{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, target)
	}
	if tn.IsGate() && th >= tn.InputsNumber() {
		return domain.EdgeView{}, &domain.HandleError{ElementID: target, Handle: th, Limit: tn.InputsNumber()}
	}

	edge := domain.NewEdge(source, target, sh, th)
	if s.graph.AddEdge(source, target, sh, th) {
		if path := s.graph.FindCycle(); path != nil {
			s.graph.DeleteEdge(source, target, sh, th)
			return domain.EdgeView{}, &domain.CycleError{Path: path}
		}
		err = s.settle(ctx, EventEdgeAdded, map[string]any{"edge_id": edge.ID()})
	}
	view, _ := s.graph.EdgeView(edge)
	return view, err
}

// DeleteNode removes a node and every edge touching it
func (s *CircuitService) DeleteNode(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.graph.DeleteNode(id) {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	return s.settle(ctx, EventNodeDeleted, map[string]any{"node_id": id})
}

// DeleteEdge removes the edge matching all four fields
func (s *CircuitService) DeleteEdge(ctx context.Context, source, target, sourceHandle, targetHandle string) error {
	sh, th, err := parseHandles(sourceHandle, targetHandle)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	edge := domain.NewEdge(source, target, sh, th)
	if s.graph.DeleteEdge(source, target, sh, th) == 0 {
		return fmt.Errorf("%w: %s", domain.ErrEdgeNotFound, edge.ID())
	}
	return s.settle(ctx, EventEdgeDeleted, map[string]any{"edge_id": edge.ID()})
}

// SetValue sets the output of an input element and settles the circuit.
// Setting the value of a gate is a no-op.
func (s *CircuitService) SetValue(ctx context.Context, id string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.graph.Node(id)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	if !node.IsInput() {
		return nil
	}
	if err := node.SetValue(value); err != nil {
		return err
	}
	return s.settle(ctx, EventValueChanged, map[string]any{"node_id": id, "value": value})
}

// SetPosition moves a node and saves the circuit without simulating
func (s *CircuitService) SetPosition(ctx context.Context, id string, x, y float64) (domain.NodeView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.graph.Node(id)
	if !ok {
		return domain.NodeView{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	node.SetPosition(x, y)

	err := s.persist(ctx)
	s.publish(EventPositionChanged, map[string]any{"node_id": id, "x": x, "y": y})
	return node.View(), err
}

// Reset empties the circuit
func (s *CircuitService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.graph.Clear()
	return s.settle(ctx, EventCircuitReset, nil)
}

// Simulate recomputes the circuit and returns the resulting snapshot
func (s *CircuitService) Simulate(ctx context.Context) (*domain.GraphView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.settle(ctx, EventCircuitSimulated, nil)
	return s.graph.DeriveView(), err
}

// Import replaces the circuit with a document read from r.
// A document that fails validation leaves the current circuit untouched.
func (s *CircuitService) Import(ctx context.Context, r io.Reader, format string) (*ImportResult, error) {
	c, err := codec.ForFormat(format)
	if err != nil {
		return nil, err
	}

	doc, err := c.Parse(r)
	if err != nil {
		return nil, err
	}

	g, report, err := s.registry.Deserialize(doc)
	if err != nil {
		return nil, err
	}
	report.LogReport(s.logger)
	if g == nil {
		g = domain.NewGraph()
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("import rejected: %w", err)
	}

	result := &ImportResult{
		Format:  c.Format(),
		Nodes:   g.Len(),
		Edges:   len(g.Edges()),
		Dropped: report.Dropped,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.graph = g
	err = s.settle(ctx, EventCircuitImported, map[string]any{
		"nodes":   result.Nodes,
		"edges":   result.Edges,
		"dropped": len(result.Dropped),
	})
	return result, err
}

// Export writes the circuit document to w
func (s *CircuitService) Export(ctx context.Context, w io.Writer, format string) error {
	c, err := codec.ForFormat(format)
	if err != nil {
		return err
	}

	s.mu.Lock()
	doc, err := s.registry.Serialize(s.graph)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	return c.Export(doc, w)
}

// settle simulates, saves and publishes; s.mu must be held
func (s *CircuitService) settle(ctx context.Context, event EventType, payload map[string]any) error {
	simErr := s.simulate()
	if simErr != nil {
		if payload == nil {
			payload = map[string]any{}
		}
		payload["error"] = simErr.Error()
	}

	persistErr := s.persist(ctx)
	s.publish(event, payload)

	if simErr != nil {
		return simErr
	}
	return persistErr
}

// simulate runs one pass and records it; s.mu must be held
func (s *CircuitService) simulate() error {
	start := time.Now()
	err := s.graph.Simulate()

	result := "ok"
	switch {
	case errors.Is(err, domain.ErrCyclicGraph):
		result = "cycle"
	case err != nil:
		result = "error"
	}
	s.metrics.recordSimulation(result, time.Since(start))
	s.metrics.recordSize(s.graph.Len(), len(s.graph.Edges()))
	return err
}

// persist saves the current document; s.mu must be held
func (s *CircuitService) persist(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	doc, err := s.registry.Serialize(s.graph)
	if err == nil {
		err = s.repo.SaveDocument(ctx, s.name, doc)
	}
	if err != nil {
		s.metrics.recordPersistFailure()
		s.logger.Error("failed to save circuit", "error", err)
		return fmt.Errorf("save circuit %s: %w", s.name, err)
	}
	return nil
}

func (s *CircuitService) publish(event EventType, payload map[string]any) {
	if s.eventBus == nil {
		return
	}
	ev := Event{Type: event, Circuit: s.name}
	if payload != nil {
		ev.Payload = payload
	}
	s.eventBus.Publish(ev)
}

func parseHandles(sourceHandle, targetHandle string) (int, int, error) {
	sh, err := domain.ParseHandle(sourceHandle, domain.SourceHandlePrefix)
	if err != nil {
		return 0, 0, err
	}
	th, err := domain.ParseHandle(targetHandle, domain.TargetHandlePrefix)
	if err != nil {
		return 0, 0, err
	}
	return sh, th, nil
}
