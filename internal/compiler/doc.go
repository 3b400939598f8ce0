// Package compiler turns a graph into an executable artifact.
//
// Compilation runs in two stages. Emit resolves the evaluation order of the
// graph and writes one IR instruction per node, inlining nested graphs
// under qualified addresses (parent.child). Compile then hands the program
// to a backend and wraps the result in an artifact.
//
// The emitted program depends only on the graph structure: node IDs, kinds,
// params, socket types and edges. Compiling the same graph twice yields
// byte-identical code and the same digest.
package compiler
