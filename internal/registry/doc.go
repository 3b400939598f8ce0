// Package registry is the catalog of primitive node kinds.
//
// A kind maps a name used in graph definitions (e.g. "add") to the Go code
// that builds a node: the socket signature and the rule evaluating it. Kinds
// are contributed by modules at startup and validated once, so definition
// files only ever reference kinds whose Go side is consistent with what
// they declare.
package registry
