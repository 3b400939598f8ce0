/*
Package nodeid provides a structured, type-safe representation for node
identifiers and their qualified addresses.

A node identifier is a single segment, `name` or `name[index]`, unique within
the graph that owns the node. When a sub-graph is inlined into its parent
during compilation, the identifiers of its nodes are qualified with the path
of embedding nodes, producing a dot-separated address such as
`filter.stage[1].sum`.

This package enforces the identifier schema and centralizes all formatting
and parsing logic.
*/
package nodeid
