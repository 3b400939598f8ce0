// Package env_vars contributes node kinds that read the process
// environment when a pass runs.
package env_vars

import (
	"os"
	"reflect"
	"strings"

	"github.com/vk/flowgrid/internal/node"
	"github.com/vk/flowgrid/internal/registry"
	"github.com/vk/flowgrid/internal/sockettype"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Environ replaces os.Environ when set.
	Environ func() []string
}

// Params selects a single variable for the "env" kind.
type Params struct {
	Name string `cty:"name"`
}

func (m *Module) environ() map[string]string {
	source := os.Environ
	if m.Environ != nil {
		source = m.Environ
	}
	envMap := make(map[string]string)
	for _, e := range source() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			envMap[pair[0]] = pair[1]
		}
	}
	return envMap
}

// Register registers the "env_vars" and "env" kinds.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind(&registry.Kind{
		Name:        "env_vars",
		Description: "Emits every environment variable as a map.",
		Build: func(_ cty.Value, types *sockettype.Registry) (node.Signature, node.Rule, error) {
			out, err := types.Parse("map(string)")
			if err != nil {
				return node.Signature{}, nil, err
			}
			rule := func([]cty.Value) ([]cty.Value, error) {
				all, err := gocty.ToCtyValue(m.environ(), out.Cty())
				if err != nil {
					return nil, err
				}
				return []cty.Value{all}, nil
			}
			return node.Signature{Outputs: []sockettype.Type{out}}, rule, nil
		},
	})

	paramsType, _ := gocty.ImpliedType(Params{})
	r.RegisterKind(&registry.Kind{
		Name:        "env",
		Description: "Emits one environment variable, or null when it is unset.",
		Params:      paramsType,
		ParamsGo:    reflect.TypeOf(Params{}),
		Build: func(params cty.Value, _ *sockettype.Registry) (node.Signature, node.Rule, error) {
			var p Params
			if err := gocty.FromCtyValue(params, &p); err != nil {
				return node.Signature{}, nil, err
			}
			rule := func([]cty.Value) ([]cty.Value, error) {
				v, ok := m.environ()[p.Name]
				if !ok {
					return []cty.Value{cty.NullVal(cty.String)}, nil
				}
				return []cty.Value{cty.StringVal(v)}, nil
			}
			return node.Signature{Outputs: []sockettype.Type{sockettype.String}}, rule, nil
		},
	})
}
