// Package sockettype is the registry of value kinds that flow along graph
// edges.
//
// Every SocketType is a registered name bound to a cty.Type. Primitive kinds
// (number, string, bool), the dynamic "any" kind and collections of
// registered kinds are available out of the box; applications add custom
// typed handles backed by cty capsule types. A registry only ever grows.
//
// Two sockets are compatible when their types are identical, when either
// side is "any", or when a conversion from the source type to the
// destination type was explicitly declared with DeclareConvertible.
package sockettype
