package testutil

import "github.com/vk/flowgrid/internal/registry"

// SimpleModule is a test helper for easily creating a module that registers
// the given kinds.
type SimpleModule struct {
	Kinds []*registry.Kind
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	for _, k := range m.Kinds {
		r.RegisterKind(k)
	}
}
