/*
Package builder materialises graph definitions from the config model into
graph.Graph values ready for compilation.

Construction of one definition happens in three phases:

 1. Node creation: every node definition becomes a graph node. Kind nodes
    are built through the primitive registry; graph nodes first build the
    referenced definition (recursively) and embed it.

 2. Linking: edge definitions are added in file order, so edge IDs match
    the definition.

 3. Exposure: input and output ports are declared in file order, which
    fixes the external signature.

Every graph.Graph error is returned unchanged, so callers can match the
sentinel errors of the graph package. A definition that embeds itself,
directly or through others, is reported as a *graph.CycleError naming the
definitions involved.
*/
package builder
