// Package dag derives the evaluation order of a graph.
//
// Resolve runs Kahn's algorithm over the non-feedback edges, always taking
// the smallest ready node ID next, so the same graph always yields the same
// order. Feedback edges are not dependencies: they carry the previous
// pass's value and are reported separately in the plan.
//
// When the non-feedback edges form a cycle, Resolve returns a
// *graph.CycleError listing every node that could not be ordered together
// with one concrete cycle through them.
package dag
