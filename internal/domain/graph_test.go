package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph(t *testing.T, nodes map[string]Kind, order ...string) *Graph {
	t.Helper()
	g := NewGraph()
	for _, id := range order {
		node, err := NewNode(id, nodes[id], Position{})
		require.NoError(t, err)
		g.AddNode(node)
	}
	return g
}

func TestNewGraph(t *testing.T) {
	g := NewGraph()
	assert.Equal(t, 0, g.Len())
	assert.Empty(t, g.Nodes())
	assert.Empty(t, g.Edges())
}

func TestGraphAddNode(t *testing.T) {
	t.Run("keeps insertion order", func(t *testing.T) {
		g := newTestGraph(t, map[string]Kind{"c": KindAnd, "a": KindOr, "b": KindButton}, "c", "a", "b")

		var ids []string
		for _, n := range g.Nodes() {
			ids = append(ids, n.ID())
		}
		assert.Equal(t, []string{"c", "a", "b"}, ids)
	})

	t.Run("same ID replaces the node", func(t *testing.T) {
		g := NewGraph()
		g.AddNode(MustNode("n", KindAnd, Position{}))
		g.AddNode(MustNode("n", KindXor, Position{X: 5}))

		require.Equal(t, 1, g.Len())
		n, ok := g.Node("n")
		require.True(t, ok)
		assert.Equal(t, KindXor, n.Type())
		assert.Equal(t, 5.0, n.Position.X)
	})

	t.Run("Nodes is a snapshot", func(t *testing.T) {
		g := newTestGraph(t, map[string]Kind{"a": KindAnd}, "a")
		snapshot := g.Nodes()
		g.AddNode(MustNode("b", KindOr, Position{}))
		assert.Len(t, snapshot, 1)
	})
}

func TestGraphAddEdge(t *testing.T) {
	t.Run("duplicate edges are ignored", func(t *testing.T) {
		g := NewGraph()
		assert.True(t, g.AddEdge("a", "b", 0, 1))
		assert.False(t, g.AddEdge("a", "b", 0, 1))
		assert.Len(t, g.Edges(), 1)
	})

	t.Run("edges differing in a handle are distinct", func(t *testing.T) {
		g := NewGraph()
		g.AddEdge("a", "b", 0, 0)
		g.AddEdge("a", "b", 0, 1)
		assert.Len(t, g.Edges(), 2)
	})

	t.Run("endpoints are not validated", func(t *testing.T) {
		g := NewGraph()
		assert.True(t, g.AddEdge("ghost", "phantom", 0, 0))
		assert.Len(t, g.Edges(), 1)
	})
}

func TestGraphDeleteNode(t *testing.T) {
	g := newTestGraph(t, map[string]Kind{"a": KindButton, "b": KindNot, "c": KindOr}, "a", "b", "c")
	g.AddEdge("a", "b", 0, 0)
	g.AddEdge("b", "c", 0, 0)
	g.AddEdge("a", "c", 0, 1)

	require.True(t, g.DeleteNode("a"))

	_, ok := g.Node("a")
	assert.False(t, ok)
	for _, e := range g.Edges() {
		assert.False(t, e.Touches("a"), "edge %s still references a", e.ID())
	}
	assert.Equal(t, []Edge{NewEdge("b", "c", 0, 0)}, g.Edges())
	assert.Equal(t, 2, g.Len())

	t.Run("missing node still drops dangling edges", func(t *testing.T) {
		g.AddEdge("ghost", "c", 0, 1)
		assert.False(t, g.DeleteNode("ghost"))
		assert.Len(t, g.Edges(), 1)
	})
}

func TestGraphDeleteEdge(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "b", 0, 0)
	g.AddEdge("a", "b", 0, 1)

	assert.Equal(t, 0, g.DeleteEdge("a", "b", 1, 0))
	assert.Equal(t, 1, g.DeleteEdge("a", "b", 0, 1))
	assert.Equal(t, []Edge{NewEdge("a", "b", 0, 0)}, g.Edges())
}

func TestGraphAdjacency(t *testing.T) {
	g := newTestGraph(t, map[string]Kind{"a": KindButton, "b": KindButton, "c": KindAnd, "d": KindNot},
		"a", "b", "c", "d")
	g.AddEdge("a", "c", 0, 0)
	g.AddEdge("b", "c", 0, 1)
	g.AddEdge("c", "d", 0, 0)

	assert.Equal(t, []Edge{NewEdge("c", "d", 0, 0)}, g.Neighbors("c"))
	assert.Empty(t, g.Neighbors("d"))
	assert.Equal(t, []Edge{NewEdge("a", "c", 0, 0), NewEdge("b", "c", 0, 1)}, g.IncomingEdges("c"))
	assert.Empty(t, g.IncomingEdges("a"))

	sinks := g.Sinks()
	require.Len(t, sinks, 1)
	assert.Equal(t, "d", sinks[0].ID())
}

func TestGraphClear(t *testing.T) {
	g := newTestGraph(t, map[string]Kind{"a": KindButton, "b": KindNot}, "a", "b")
	g.AddEdge("a", "b", 0, 0)

	g.Clear()
	assert.Equal(t, 0, g.Len())
	assert.Empty(t, g.Edges())

	g.AddNode(MustNode("z", KindAnd, Position{}))
	assert.Len(t, g.Nodes(), 1)
}

func TestGraphViews(t *testing.T) {
	g := NewGraph()
	g.AddNode(MustNode("in", KindConstant, Position{X: 10, Y: 20}))
	g.AddNode(MustNode("not", KindNot, Position{X: 100, Y: 20}))
	g.AddEdge("in", "not", 0, 0)
	g.AddEdge("ghost", "not", 0, 0)
	require.NoError(t, g.Simulate())

	view := g.DeriveView()
	require.Len(t, view.Nodes, 2)
	assert.Equal(t, NodeView{
		ID:       "in",
		Type:     KindConstant,
		Position: Position{X: 10, Y: 20},
		Inputs:   []bool{},
		Outputs:  []bool{true},
	}, view.Nodes[0])
	assert.Equal(t, []bool{true}, view.Nodes[1].Inputs)
	assert.Equal(t, []bool{false}, view.Nodes[1].Outputs)

	require.Len(t, view.Edges, 2)
	assert.Equal(t, EdgeView{
		ID:           "in-not-0-0",
		Source:       "in",
		Target:       "not",
		SourceHandle: "source#0",
		TargetHandle: "target#0",
		Value:        true,
	}, view.Edges[0])
	assert.False(t, view.Edges[1].Value)
}

func TestGraphEdgeView(t *testing.T) {
	g := newTestGraph(t, map[string]Kind{"a": KindConstant, "a-b": KindButton, "b-c": KindNot, "c": KindNot}, "a", "a-b", "b-c", "c")
	g.AddEdge("a", "b-c", 0, 0)
	g.AddEdge("a-b", "c", 0, 0)

	v, ok := g.EdgeView(NewEdge("a-b", "c", 0, 0))
	require.True(t, ok)
	assert.Equal(t, "a-b", v.Source)
	assert.Equal(t, "c", v.Target)
	assert.False(t, v.Value)

	v, ok = g.EdgeView(NewEdge("a", "b-c", 0, 0))
	require.True(t, ok)
	assert.True(t, v.Value)
	assert.Equal(t, v.ID, NewEdge("a-b", "c", 0, 0).ID())

	_, ok = g.EdgeView(NewEdge("a", "c", 0, 0))
	assert.False(t, ok)
}
