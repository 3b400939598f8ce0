package graph

import (
	"fmt"

	"github.com/vk/flowgrid/internal/node"
	"github.com/vk/flowgrid/internal/nodeid"
	"github.com/vk/flowgrid/internal/sockettype"
)

// BodyKind tags the variant held by a Node.
type BodyKind int

const (
	// BodyPrimitive nodes evaluate a rule.
	BodyPrimitive BodyKind = iota
	// BodySubGraph nodes embed another graph, inlined at compile time.
	BodySubGraph
	// BodyCompiled nodes embed an already compiled artifact.
	BodyCompiled
)

func (k BodyKind) String() string {
	switch k {
	case BodyPrimitive:
		return "primitive"
	case BodySubGraph:
		return "subgraph"
	case BodyCompiled:
		return "compiled"
	default:
		return fmt.Sprintf("BodyKind(%d)", int(k))
	}
}

// Node is a vertex of a Graph. Its ID and signature are fixed at
// construction.
type Node struct {
	id   string
	sig  node.Signature
	kind BodyKind

	primitive node.Primitive
	subGraph  *Graph
	compiled  node.Precompiled
}

// NewPrimitive creates a leaf node evaluating prim.Rule.
func NewPrimitive(id string, inputs, outputs []sockettype.Type, prim node.Primitive) (*Node, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	if prim.Rule == nil {
		return nil, fmt.Errorf("%w: primitive node %q has no rule", ErrInvalidNode, id)
	}
	if prim.Kind == "" {
		return nil, fmt.Errorf("%w: primitive node %q has no kind", ErrInvalidNode, id)
	}
	sig := node.Signature{Inputs: inputs, Outputs: outputs}.Clone()
	if err := validateSignature(id, sig); err != nil {
		return nil, err
	}
	return &Node{id: id, sig: sig, kind: BodyPrimitive, primitive: prim}, nil
}

// NewGraphNode wraps g as a node. The sockets are a snapshot of g's external
// sockets at this moment; later changes to g's external sockets are detected
// at compile time.
func NewGraphNode(id string, g *Graph) (*Node, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("%w: graph node %q has no graph", ErrInvalidNode, id)
	}
	return &Node{id: id, sig: g.Signature(), kind: BodySubGraph, subGraph: g}, nil
}

// NewCompiledNode wraps a compiled artifact as a node.
func NewCompiledNode(id string, c node.Precompiled) (*Node, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: compiled node %q has no artifact", ErrInvalidNode, id)
	}
	sig := c.Signature().Clone()
	if err := validateSignature(id, sig); err != nil {
		return nil, err
	}
	return &Node{id: id, sig: sig, kind: BodyCompiled, compiled: c}, nil
}

func validateID(id string) error {
	if _, err := nodeid.ParseID(id); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNode, err)
	}
	return nil
}

func validateSignature(id string, sig node.Signature) error {
	for i, t := range sig.Inputs {
		if t.IsZero() {
			return fmt.Errorf("%w: node %q input %d has no type", ErrInvalidNode, id, i)
		}
	}
	for i, t := range sig.Outputs {
		if t.IsZero() {
			return fmt.Errorf("%w: node %q output %d has no type", ErrInvalidNode, id, i)
		}
	}
	return nil
}

// ID returns the node identifier.
func (n *Node) ID() string { return n.id }

// Kind returns the body variant.
func (n *Node) Kind() BodyKind { return n.kind }

// Signature returns a copy of the node's socket types.
func (n *Node) Signature() node.Signature { return n.sig.Clone() }

// Inputs returns the input sockets in order.
func (n *Node) Inputs() []node.Socket { return n.sig.Sockets(node.Input) }

// Outputs returns the output sockets in order.
func (n *Node) Outputs() []node.Socket { return n.sig.Sockets(node.Output) }

// NumInputs returns the number of input sockets.
func (n *Node) NumInputs() int { return len(n.sig.Inputs) }

// NumOutputs returns the number of output sockets.
func (n *Node) NumOutputs() int { return len(n.sig.Outputs) }

// InputType returns the type of input socket i.
func (n *Node) InputType(i int) (sockettype.Type, bool) {
	if i < 0 || i >= len(n.sig.Inputs) {
		return sockettype.Type{}, false
	}
	return n.sig.Inputs[i], true
}

// OutputType returns the type of output socket i.
func (n *Node) OutputType(i int) (sockettype.Type, bool) {
	if i < 0 || i >= len(n.sig.Outputs) {
		return sockettype.Type{}, false
	}
	return n.sig.Outputs[i], true
}

// Primitive returns the primitive body.
func (n *Node) Primitive() (node.Primitive, bool) {
	return n.primitive, n.kind == BodyPrimitive
}

// SubGraph returns the embedded graph.
func (n *Node) SubGraph() (*Graph, bool) {
	return n.subGraph, n.kind == BodySubGraph
}

// Compiled returns the embedded artifact.
func (n *Node) Compiled() (node.Precompiled, bool) {
	return n.compiled, n.kind == BodyCompiled
}

func (n *Node) String() string {
	return fmt.Sprintf("%s(%s) %s", n.id, n.kind, n.sig)
}
