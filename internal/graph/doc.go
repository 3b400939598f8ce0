// Package graph is the authoring model of a dataflow program: nodes with
// typed sockets, edges between them, and the external sockets that make a
// graph usable as a node of another graph.
//
// # Ownership
//
// A Graph exclusively owns its nodes and edges. Removing a node removes
// every edge and external-socket declaration that references it. Node
// values themselves are immutable once constructed, so a *Node may be
// inspected freely by callers.
//
// # Validation
//
// Every mutation either succeeds completely or leaves the graph exactly as
// it was. Structural rules enforced at mutation time:
//   - node IDs are unique within a graph
//   - an input socket has at most one source (an edge or an external input)
//   - both ends of an edge exist and their types are compatible
//   - a graph never contains itself, directly or through nested graphs
//
// Cycles among non-feedback edges are allowed while editing and rejected at
// compile time by the resolver (see internal/dag).
//
// # Thread-Safety
//
// A Graph has no internal locking. Callers serialize mutations; concurrent
// reads without writers are safe.
package graph
