package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/flowgrid/internal/node"
	"github.com/vk/flowgrid/internal/sockettype"
	"github.com/zclconf/go-cty/cty"
)

func passthrough(inputs []cty.Value) ([]cty.Value, error) {
	return inputs, nil
}

func numNode(t *testing.T, id string, ins, outs int) *Node {
	t.Helper()
	in := make([]sockettype.Type, ins)
	for i := range in {
		in[i] = sockettype.Number
	}
	out := make([]sockettype.Type, outs)
	for i := range out {
		out[i] = sockettype.Number
	}
	n, err := NewPrimitive(id, in, out, node.Primitive{Kind: "test", Rule: passthrough})
	require.NoError(t, err)
	return n
}

func strNode(t *testing.T, id string) *Node {
	t.Helper()
	n, err := NewPrimitive(id, []sockettype.Type{sockettype.String}, []sockettype.Type{sockettype.String},
		node.Primitive{Kind: "test", Rule: passthrough})
	require.NoError(t, err)
	return n
}

func mustAdd(t *testing.T, g *Graph, nodes ...*Node) {
	t.Helper()
	for _, n := range nodes {
		_, err := g.AddNode(n)
		require.NoError(t, err)
	}
}

func TestNewPrimitive_Validation(t *testing.T) {
	rule := node.Primitive{Kind: "test", Rule: passthrough}

	testCases := []struct {
		name string
		id   string
		ins  []sockettype.Type
		prim node.Primitive
	}{
		{name: "empty id", id: "", prim: rule},
		{name: "dotted id", id: "a.b", prim: rule},
		{name: "spaces", id: "a b", prim: rule},
		{name: "missing rule", id: "a", prim: node.Primitive{Kind: "test"}},
		{name: "missing kind", id: "a", prim: node.Primitive{Rule: passthrough}},
		{name: "zero socket type", id: "a", ins: []sockettype.Type{{}}, prim: rule},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPrimitive(tc.id, tc.ins, nil, tc.prim)
			assert.ErrorIs(t, err, ErrInvalidNode)
		})
	}
}

func TestNode_SocketsAreCopies(t *testing.T) {
	n := numNode(t, "a", 2, 1)
	sig := n.Signature()
	sig.Inputs[0] = sockettype.String

	typ, ok := n.InputType(0)
	require.True(t, ok)
	assert.Equal(t, sockettype.Number, typ)
	assert.Len(t, n.Inputs(), 2)
	assert.Len(t, n.Outputs(), 1)
	assert.Equal(t, BodyPrimitive, n.Kind())

	_, ok = n.SubGraph()
	assert.False(t, ok)
}

func TestAddNode_DuplicateID(t *testing.T) {
	g := New()
	mustAdd(t, g, numNode(t, "a", 0, 1))

	rev := g.Revision()
	_, err := g.AddNode(numNode(t, "a", 1, 1))
	require.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, rev, g.Revision())
	assert.Equal(t, 1, g.Len())
}

func TestAddNode_SelfEmbedding(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		g := New()
		self, err := NewGraphNode("self", g)
		require.NoError(t, err)

		_, err = g.AddNode(self)
		require.ErrorIs(t, err, ErrCyclicGraph)

		var cycleErr *CycleError
		require.True(t, errors.As(err, &cycleErr))
		assert.Equal(t, []string{"self"}, cycleErr.Path)
		assert.Equal(t, 0, g.Len())
	})

	t.Run("transitive", func(t *testing.T) {
		outer := New()
		inner := New()
		innerNode, err := NewGraphNode("inner", inner)
		require.NoError(t, err)
		mustAdd(t, outer, innerNode)

		outerNode, err := NewGraphNode("outer", outer)
		require.NoError(t, err)
		_, err = inner.AddNode(outerNode)
		require.ErrorIs(t, err, ErrCyclicGraph)

		var cycleErr *CycleError
		require.True(t, errors.As(err, &cycleErr))
		assert.Equal(t, []string{"outer", "inner"}, cycleErr.Path)
		assert.Equal(t, []string{"inner", "outer"}, cycleErr.Nodes)
	})

	t.Run("sibling reuse is fine", func(t *testing.T) {
		shared := New()
		g := New()
		a, err := NewGraphNode("a", shared)
		require.NoError(t, err)
		b, err := NewGraphNode("b", shared)
		require.NoError(t, err)
		mustAdd(t, g, a, b)
	})
}

func TestAddEdge(t *testing.T) {
	testCases := []struct {
		name        string
		spec        EdgeSpec
		expectedErr error
	}{
		{name: "valid", spec: EdgeSpec{From: Endpoint{"src", 0}, To: Endpoint{"dst", 0}}},
		{name: "feedback", spec: EdgeSpec{From: Endpoint{"dst", 0}, To: Endpoint{"dst", 1}, Feedback: true}},
		{name: "unknown source node", spec: EdgeSpec{From: Endpoint{"nope", 0}, To: Endpoint{"dst", 0}}, expectedErr: ErrUnknownNode},
		{name: "unknown destination node", spec: EdgeSpec{From: Endpoint{"src", 0}, To: Endpoint{"nope", 0}}, expectedErr: ErrUnknownNode},
		{name: "bad output index", spec: EdgeSpec{From: Endpoint{"src", 3}, To: Endpoint{"dst", 0}}, expectedErr: ErrUnknownSocket},
		{name: "negative input index", spec: EdgeSpec{From: Endpoint{"src", 0}, To: Endpoint{"dst", -1}}, expectedErr: ErrUnknownSocket},
		{name: "type mismatch", spec: EdgeSpec{From: Endpoint{"text", 0}, To: Endpoint{"dst", 0}}, expectedErr: ErrTypeMismatch},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := New()
			mustAdd(t, g, numNode(t, "src", 0, 1), numNode(t, "dst", 2, 1), strNode(t, "text"))

			rev := g.Revision()
			id, err := g.AddEdge(tc.spec)
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
				assert.Empty(t, g.Edges())
				assert.Equal(t, rev, g.Revision())
				return
			}
			require.NoError(t, err)
			e, ok := g.Edge(id)
			require.True(t, ok)
			assert.Equal(t, tc.spec.Feedback, e.Feedback)
			assert.Greater(t, g.Revision(), rev)
		})
	}
}

func TestAddEdge_TypeMismatchLeavesGraphUnchanged(t *testing.T) {
	g := New()
	mustAdd(t, g, numNode(t, "a", 0, 1), numNode(t, "b", 1, 1), strNode(t, "s"))
	_, err := g.AddEdge(EdgeSpec{From: Endpoint{"a", 0}, To: Endpoint{"b", 0}})
	require.NoError(t, err)

	before := len(g.Edges())
	_, err = g.AddEdge(EdgeSpec{From: Endpoint{"a", 0}, To: Endpoint{"s", 0}})
	require.ErrorIs(t, err, ErrTypeMismatch)
	assert.Len(t, g.Edges(), before)
}

func TestAddEdge_AnyAndDeclaredConversions(t *testing.T) {
	reg := sockettype.New()
	g := New(WithTypes(reg))
	sink, err := NewPrimitive("sink", []sockettype.Type{sockettype.Any, sockettype.String}, nil,
		node.Primitive{Kind: "test", Rule: passthrough})
	require.NoError(t, err)
	mustAdd(t, g, numNode(t, "n", 0, 1), sink)

	_, err = g.AddEdge(EdgeSpec{From: Endpoint{"n", 0}, To: Endpoint{"sink", 0}})
	require.NoError(t, err, "any accepts every type")

	_, err = g.AddEdge(EdgeSpec{From: Endpoint{"n", 0}, To: Endpoint{"sink", 1}})
	require.ErrorIs(t, err, ErrTypeMismatch)

	require.NoError(t, reg.DeclareConvertible(sockettype.Number, sockettype.String))
	_, err = g.AddEdge(EdgeSpec{From: Endpoint{"n", 0}, To: Endpoint{"sink", 1}})
	require.NoError(t, err)
}

func TestAddEdge_FanIn(t *testing.T) {
	g := New()
	mustAdd(t, g, numNode(t, "a", 0, 1), numNode(t, "b", 0, 1), numNode(t, "c", 1, 1))

	_, err := g.AddEdge(EdgeSpec{From: Endpoint{"a", 0}, To: Endpoint{"c", 0}})
	require.NoError(t, err)

	_, err = g.AddEdge(EdgeSpec{From: Endpoint{"b", 0}, To: Endpoint{"c", 0}})
	require.ErrorIs(t, err, ErrFanInViolation)
	assert.Len(t, g.Edges(), 1)

	// Fan-out is unrestricted.
	mustAdd(t, g, numNode(t, "d", 1, 0))
	_, err = g.AddEdge(EdgeSpec{From: Endpoint{"a", 0}, To: Endpoint{"d", 0}})
	require.NoError(t, err)
}

func TestEdgeIDs_NeverReused(t *testing.T) {
	g := New()
	mustAdd(t, g, numNode(t, "a", 0, 1), numNode(t, "b", 1, 0))

	first, err := g.AddEdge(EdgeSpec{From: Endpoint{"a", 0}, To: Endpoint{"b", 0}})
	require.NoError(t, err)
	require.NoError(t, g.RemoveEdge(first))

	second, err := g.AddEdge(EdgeSpec{From: Endpoint{"a", 0}, To: Endpoint{"b", 0}})
	require.NoError(t, err)
	assert.Greater(t, second, first)

	assert.ErrorIs(t, g.RemoveEdge(first), ErrUnknownEdge)
}

func TestRemoveNode(t *testing.T) {
	g := New()
	mustAdd(t, g, numNode(t, "a", 1, 1), numNode(t, "b", 1, 1), numNode(t, "c", 1, 1))
	_, err := g.AddEdge(EdgeSpec{From: Endpoint{"a", 0}, To: Endpoint{"b", 0}})
	require.NoError(t, err)
	keep, err := g.AddEdge(EdgeSpec{From: Endpoint{"a", 0}, To: Endpoint{"c", 0}})
	require.NoError(t, err)
	require.NoError(t, g.DeclareExternalInput("a", 0))
	require.NoError(t, g.DeclareExternalOutput("b", 0))
	require.NoError(t, g.DeclareExternalOutput("c", 0))

	require.NoError(t, g.RemoveNode("b"))

	assert.Equal(t, []string{"a", "c"}, g.NodeIDs())
	edges := g.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, keep, edges[0].ID)
	assert.Equal(t, []External{{Endpoint: Endpoint{"c", 0}}}, g.ExternalOutputs())
	assert.Len(t, g.ExternalInputs(), 1)

	_, ok := g.IncomingEdge(Endpoint{"b", 0})
	assert.False(t, ok)

	assert.ErrorIs(t, g.RemoveNode("b"), ErrUnknownNode)
}

func TestDeclareExternal(t *testing.T) {
	g := New()
	mustAdd(t, g, numNode(t, "a", 1, 1), numNode(t, "b", 1, 1))
	_, err := g.AddEdge(EdgeSpec{From: Endpoint{"a", 0}, To: Endpoint{"b", 0}})
	require.NoError(t, err)

	require.NoError(t, g.DeclareExternalInput("a", 0, Named("x")))
	assert.ErrorIs(t, g.DeclareExternalInput("a", 0), ErrSocketAlreadyExposed)
	assert.ErrorIs(t, g.DeclareExternalInput("b", 0), ErrFanInViolation)
	assert.ErrorIs(t, g.DeclareExternalInput("zzz", 0), ErrUnknownNode)
	assert.ErrorIs(t, g.DeclareExternalInput("a", 1), ErrUnknownSocket)

	require.NoError(t, g.DeclareExternalOutput("b", 0, Named("y")))
	assert.ErrorIs(t, g.DeclareExternalOutput("b", 0), ErrSocketAlreadyExposed)
	assert.ErrorIs(t, g.DeclareExternalOutput("a", 0, Named("y")), ErrSocketAlreadyExposed)
	require.NoError(t, g.DeclareExternalOutput("a", 0))

	// An exposed input cannot also be wired.
	mustAdd(t, g, numNode(t, "c", 0, 1))
	_, err = g.AddEdge(EdgeSpec{From: Endpoint{"c", 0}, To: Endpoint{"a", 0}})
	assert.ErrorIs(t, err, ErrFanInViolation)

	sig := g.Signature()
	assert.Equal(t, []sockettype.Type{sockettype.Number}, sig.Inputs)
	assert.Equal(t, []sockettype.Type{sockettype.Number, sockettype.Number}, sig.Outputs)
	idx, ok := g.ExternalInputIndex(Endpoint{"a", 0})
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestNewGraphNode_SnapshotsSignature(t *testing.T) {
	inner := New()
	mustAdd(t, inner, numNode(t, "double", 1, 1))
	require.NoError(t, inner.DeclareExternalInput("double", 0))
	require.NoError(t, inner.DeclareExternalOutput("double", 0))

	n, err := NewGraphNode("wrapped", inner)
	require.NoError(t, err)
	assert.Equal(t, BodySubGraph, n.Kind())
	assert.Equal(t, 1, n.NumInputs())

	require.NoError(t, inner.RemoveNode("double"))
	assert.Equal(t, 1, n.NumInputs(), "the node keeps the signature it was built with")
	assert.Empty(t, inner.Signature().Inputs)
}
