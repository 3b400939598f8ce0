// Package print contributes the "print" kind, a pass-through node that
// writes every value it sees.
package print

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"sync"

	"github.com/vk/flowgrid/internal/node"
	"github.com/vk/flowgrid/internal/registry"
	"github.com/vk/flowgrid/internal/sockettype"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// W receives the printed lines. It defaults to os.Stdout.
	W io.Writer

	mu sync.Mutex
}

func (m *Module) writer() io.Writer {
	if m.W != nil {
		return m.W
	}
	return os.Stdout
}

// Register registers the "print" kind. Params are the label printed in
// front of each value.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind(&registry.Kind{
		Name:        "print",
		Description: "Prints its input and forwards it.",
		Params:      cty.String,
		ParamsGo:    reflect.TypeOf(""),
		Build: func(params cty.Value, _ *sockettype.Registry) (node.Signature, node.Rule, error) {
			label := params.AsString()
			rule := func(inputs []cty.Value) ([]cty.Value, error) {
				m.mu.Lock()
				defer m.mu.Unlock()
				if _, err := fmt.Fprintf(m.writer(), "%s = %s\n", label, render(inputs[0])); err != nil {
					return nil, err
				}
				return []cty.Value{inputs[0]}, nil
			}
			return node.Signature{
				Inputs:  []sockettype.Type{sockettype.Any},
				Outputs: []sockettype.Type{sockettype.Any},
			}, rule, nil
		},
	})
}

func render(v cty.Value) string {
	if v == cty.NilVal || v.IsNull() {
		return "(null)"
	}
	raw, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return fmt.Sprintf("<%s>", v.Type().FriendlyName())
	}
	return string(raw)
}
