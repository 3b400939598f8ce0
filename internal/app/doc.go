// Package app wires the compilation core into an embeddable engine: it owns
// the logger, the primitive and backend registries, the definition loaders
// and the configuration, and exposes graph compilation and definition
// loading on top of them.
package app
