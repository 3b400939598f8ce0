// Package core contributes the built-in node kinds: constants, arithmetic,
// comparison, boolean logic and string formatting.
package core

import (
	"github.com/vk/flowgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers every built-in kind.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind(constKind())
	r.RegisterKind(identityKind())
	r.RegisterKind(selectKind())

	for _, k := range arithmeticKinds() {
		r.RegisterKind(k)
	}
	for _, k := range comparisonKinds() {
		r.RegisterKind(k)
	}
	for _, k := range logicKinds() {
		r.RegisterKind(k)
	}

	r.RegisterKind(concatKind())
	r.RegisterKind(formatKind())
}
