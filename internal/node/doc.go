// Package node defines the pieces a graph node is made of: typed sockets,
// the node signature, and the primitive rule that computes outputs from
// inputs. It also declares the contracts a compiled artifact satisfies so it
// can be embedded back into a graph as a node body.
package node
