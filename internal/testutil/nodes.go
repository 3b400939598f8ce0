package testutil

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/node"
	"github.com/vk/flowgrid/internal/sockettype"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// ErrBoom is returned by FailRule.
var ErrBoom = errors.New("boom")

// Numbers returns n number types.
func Numbers(n int) []sockettype.Type {
	out := make([]sockettype.Type, n)
	for i := range out {
		out[i] = sockettype.Number
	}
	return out
}

// ConstRule always yields v.
func ConstRule(v cty.Value) node.Rule {
	return func([]cty.Value) ([]cty.Value, error) {
		return []cty.Value{v}, nil
	}
}

// AddRule sums all inputs. A null input counts as zero.
func AddRule(inputs []cty.Value) ([]cty.Value, error) {
	sum := cty.Zero
	for _, v := range inputs {
		if v.IsNull() {
			continue
		}
		var err error
		if sum, err = stdlib.Add(sum, v); err != nil {
			return nil, err
		}
	}
	return []cty.Value{sum}, nil
}

// PassRule returns its inputs unchanged.
func PassRule(inputs []cty.Value) ([]cty.Value, error) {
	return append([]cty.Value(nil), inputs...), nil
}

// FailRule always fails with ErrBoom.
func FailRule([]cty.Value) ([]cty.Value, error) {
	return nil, ErrBoom
}

// CountingRule wraps rule and counts its calls.
func CountingRule(calls *atomic.Int32, rule node.Rule) node.Rule {
	return func(inputs []cty.Value) ([]cty.Value, error) {
		calls.Add(1)
		return rule(inputs)
	}
}

// Primitive builds a primitive node or fails the test.
func Primitive(t *testing.T, id, kind string, ins, outs []sockettype.Type, rule node.Rule) *graph.Node {
	t.Helper()
	n, err := graph.NewPrimitive(id, ins, outs, node.Primitive{Kind: kind, Rule: rule})
	require.NoError(t, err)
	return n
}

// Const builds a node with no inputs and one number output yielding v.
func Const(t *testing.T, id string, v int64) *graph.Node {
	t.Helper()
	n, err := graph.NewPrimitive(id, nil, Numbers(1), node.Primitive{
		Kind:   "const",
		Params: cty.NumberIntVal(v),
		Rule:   ConstRule(cty.NumberIntVal(v)),
	})
	require.NoError(t, err)
	return n
}

// Add builds a node summing n number inputs.
func Add(t *testing.T, id string, n int) *graph.Node {
	t.Helper()
	return Primitive(t, id, "add", Numbers(n), Numbers(1), AddRule)
}

// AddNodes adds nodes to g or fails the test.
func AddNodes(t *testing.T, g *graph.Graph, nodes ...*graph.Node) {
	t.Helper()
	for _, n := range nodes {
		_, err := g.AddNode(n)
		require.NoError(t, err)
	}
}

// Connect adds a non-feedback edge or fails the test.
func Connect(t *testing.T, g *graph.Graph, from string, fromSocket int, to string, toSocket int) graph.EdgeID {
	t.Helper()
	id, err := g.AddEdge(graph.EdgeSpec{
		From: graph.Endpoint{Node: from, Socket: fromSocket},
		To:   graph.Endpoint{Node: to, Socket: toSocket},
	})
	require.NoError(t, err)
	return id
}

// Feedback adds a feedback edge or fails the test.
func Feedback(t *testing.T, g *graph.Graph, from string, fromSocket int, to string, toSocket int) graph.EdgeID {
	t.Helper()
	id, err := g.AddEdge(graph.EdgeSpec{
		From:     graph.Endpoint{Node: from, Socket: fromSocket},
		To:       graph.Endpoint{Node: to, Socket: toSocket},
		Feedback: true,
	})
	require.NoError(t, err)
	return id
}
