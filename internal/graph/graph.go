package graph

import (
	"fmt"
	"sort"

	"github.com/vk/flowgrid/internal/node"
	"github.com/vk/flowgrid/internal/sockettype"
)

// Graph is a mutable dataflow graph. See the package documentation for the
// rules it enforces.
type Graph struct {
	types *sockettype.Registry

	nodes    map[string]*Node
	edges    map[EdgeID]Edge
	incoming map[Endpoint]EdgeID
	nextEdge EdgeID

	inputs  []External
	outputs []External

	revision uint64
}

// WithTypes sets the registry used to check edge compatibility. It defaults
// to sockettype.Default().
func WithTypes(r *sockettype.Registry) Option {
	return func(g *Graph) {
		if r != nil {
			g.types = r
		}
	}
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		types:    sockettype.Default(),
		nodes:    make(map[string]*Node),
		edges:    make(map[EdgeID]Edge),
		incoming: make(map[Endpoint]EdgeID),
		nextEdge: 1,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Types returns the registry the graph checks edges against.
func (g *Graph) Types() *sockettype.Registry { return g.types }

// AddNode inserts n and returns its ID.
func (g *Graph) AddNode(n *Node) (string, error) {
	if n == nil {
		return "", fmt.Errorf("%w: nil node", ErrInvalidNode)
	}
	if _, exists := g.nodes[n.id]; exists {
		return "", fmt.Errorf("%w: %q", ErrDuplicateID, n.id)
	}
	if sub, ok := n.SubGraph(); ok {
		if path, found := embeds(sub, g, []string{n.id}, make(map[*Graph]bool)); found {
			return "", &CycleError{Nodes: sortedCopy(path), Path: path}
		}
	}

	g.nodes[n.id] = n
	g.revision++
	return n.id, nil
}

// embeds reports whether target is reachable from g through sub-graph
// bodies, returning the chain of node IDs leading to it.
func embeds(g, target *Graph, path []string, seen map[*Graph]bool) ([]string, bool) {
	if g == target {
		return path, true
	}
	if seen[g] {
		return nil, false
	}
	seen[g] = true

	for _, id := range g.NodeIDs() {
		sub, ok := g.nodes[id].SubGraph()
		if !ok {
			continue
		}
		if found, ok := embeds(sub, target, append(path[:len(path):len(path)], id), seen); ok {
			return found, true
		}
	}
	return nil, false
}

// RemoveNode deletes a node together with its incident edges and external
// socket declarations.
func (g *Graph) RemoveNode(id string) error {
	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}

	for eid, e := range g.edges {
		if e.From.Node == id || e.To.Node == id {
			g.deleteEdge(eid)
		}
	}
	g.inputs = dropNode(g.inputs, id)
	g.outputs = dropNode(g.outputs, id)
	delete(g.nodes, id)
	g.revision++
	return nil
}

func dropNode(ext []External, id string) []External {
	kept := ext[:0:0]
	for _, e := range ext {
		if e.Node != id {
			kept = append(kept, e)
		}
	}
	return kept
}

// AddEdge connects an output socket to an input socket.
func (g *Graph) AddEdge(spec EdgeSpec) (EdgeID, error) {
	srcType, err := g.socketType(spec.From, node.Output)
	if err != nil {
		return 0, err
	}
	dstType, err := g.socketType(spec.To, node.Input)
	if err != nil {
		return 0, err
	}
	if !g.types.Compatible(srcType, dstType) {
		return 0, fmt.Errorf("%w: %s (%s) -> %s (%s)", ErrTypeMismatch, spec.From, srcType, spec.To, dstType)
	}
	if existing, ok := g.incoming[spec.To]; ok {
		return 0, fmt.Errorf("%w: %s is fed by edge #%d", ErrFanInViolation, spec.To, existing)
	}
	if g.isExternal(g.inputs, spec.To) {
		return 0, fmt.Errorf("%w: %s is an external input", ErrFanInViolation, spec.To)
	}

	id := g.nextEdge
	g.nextEdge++
	g.edges[id] = Edge{ID: id, From: spec.From, To: spec.To, Feedback: spec.Feedback}
	g.incoming[spec.To] = id
	g.revision++
	return id, nil
}

// RemoveEdge deletes an edge.
func (g *Graph) RemoveEdge(id EdgeID) error {
	if _, ok := g.edges[id]; !ok {
		return fmt.Errorf("%w: #%d", ErrUnknownEdge, id)
	}
	g.deleteEdge(id)
	g.revision++
	return nil
}

func (g *Graph) deleteEdge(id EdgeID) {
	e := g.edges[id]
	delete(g.incoming, e.To)
	delete(g.edges, id)
}

// DeclareExternalInput exposes an input socket of an inner node as the next
// input of the graph.
func (g *Graph) DeclareExternalInput(nodeID string, socket int, opts ...ExternalOption) error {
	ext, err := g.newExternal(nodeID, socket, node.Input, opts)
	if err != nil {
		return err
	}
	if g.isExternal(g.inputs, ext.Endpoint) {
		return fmt.Errorf("%w: input %s", ErrSocketAlreadyExposed, ext.Endpoint)
	}
	if err := checkName(g.inputs, ext.Name); err != nil {
		return err
	}
	if existing, ok := g.incoming[ext.Endpoint]; ok {
		return fmt.Errorf("%w: %s is fed by edge #%d", ErrFanInViolation, ext.Endpoint, existing)
	}

	g.inputs = append(g.inputs, ext)
	g.revision++
	return nil
}

// DeclareExternalOutput exposes an output socket of an inner node as the
// next output of the graph.
func (g *Graph) DeclareExternalOutput(nodeID string, socket int, opts ...ExternalOption) error {
	ext, err := g.newExternal(nodeID, socket, node.Output, opts)
	if err != nil {
		return err
	}
	if g.isExternal(g.outputs, ext.Endpoint) {
		return fmt.Errorf("%w: output %s", ErrSocketAlreadyExposed, ext.Endpoint)
	}
	if err := checkName(g.outputs, ext.Name); err != nil {
		return err
	}

	g.outputs = append(g.outputs, ext)
	g.revision++
	return nil
}

func (g *Graph) newExternal(nodeID string, socket int, dir node.Direction, opts []ExternalOption) (External, error) {
	ext := External{Endpoint: Endpoint{Node: nodeID, Socket: socket}}
	for _, opt := range opts {
		opt(&ext)
	}
	if _, err := g.socketType(ext.Endpoint, dir); err != nil {
		return External{}, err
	}
	return ext, nil
}

func checkName(ext []External, name string) error {
	if name == "" {
		return nil
	}
	for _, e := range ext {
		if e.Name == name {
			return fmt.Errorf("%w: name %q is used by %s", ErrSocketAlreadyExposed, name, e.Endpoint)
		}
	}
	return nil
}

func (g *Graph) isExternal(ext []External, ep Endpoint) bool {
	for _, e := range ext {
		if e.Endpoint == ep {
			return true
		}
	}
	return false
}

func (g *Graph) socketType(ep Endpoint, dir node.Direction) (sockettype.Type, error) {
	n, ok := g.nodes[ep.Node]
	if !ok {
		return sockettype.Type{}, fmt.Errorf("%w: %q", ErrUnknownNode, ep.Node)
	}
	var (
		t     sockettype.Type
		found bool
	)
	if dir == node.Input {
		t, found = n.InputType(ep.Socket)
	} else {
		t, found = n.OutputType(ep.Socket)
	}
	if !found {
		return sockettype.Type{}, fmt.Errorf("%w: %s %s", ErrUnknownSocket, dir, ep)
	}
	return t, nil
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// NodeIDs returns all node IDs in ascending order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Edges returns all edges ordered by ID.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edge returns the edge with the given ID.
func (g *Graph) Edge(id EdgeID) (Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// IncomingEdge returns the edge feeding the given input socket.
func (g *Graph) IncomingEdge(to Endpoint) (Edge, bool) {
	id, ok := g.incoming[to]
	if !ok {
		return Edge{}, false
	}
	return g.edges[id], true
}

// ExternalInputs returns the declared external inputs in declaration order.
func (g *Graph) ExternalInputs() []External {
	return append([]External(nil), g.inputs...)
}

// ExternalOutputs returns the declared external outputs in declaration
// order.
func (g *Graph) ExternalOutputs() []External {
	return append([]External(nil), g.outputs...)
}

// ExternalInputIndex returns the position of ep among the external inputs.
func (g *Graph) ExternalInputIndex(ep Endpoint) (int, bool) {
	for i, e := range g.inputs {
		if e.Endpoint == ep {
			return i, true
		}
	}
	return -1, false
}

// Signature returns the types of the external sockets.
func (g *Graph) Signature() node.Signature {
	sig := node.Signature{
		Inputs:  make([]sockettype.Type, len(g.inputs)),
		Outputs: make([]sockettype.Type, len(g.outputs)),
	}
	for i, e := range g.inputs {
		sig.Inputs[i], _ = g.nodes[e.Node].InputType(e.Socket)
	}
	for i, e := range g.outputs {
		sig.Outputs[i], _ = g.nodes[e.Node].OutputType(e.Socket)
	}
	return sig
}

// Revision increases on every successful mutation.
func (g *Graph) Revision() uint64 { return g.revision }

func sortedCopy(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}
