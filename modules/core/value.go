package core

import (
	"fmt"
	"reflect"

	"github.com/vk/flowgrid/internal/node"
	"github.com/vk/flowgrid/internal/registry"
	"github.com/vk/flowgrid/internal/sockettype"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// constKind emits its params on every pass. The output type follows the
// params: tuples become lists and objects become maps when their elements
// share a type.
func constKind() *registry.Kind {
	return &registry.Kind{
		Name:        "const",
		Description: "Emits a constant value.",
		Params:      cty.DynamicPseudoType,
		Build: func(params cty.Value, types *sockettype.Registry) (node.Signature, node.Rule, error) {
			value, err := normalizeConst(params)
			if err != nil {
				return node.Signature{}, nil, err
			}
			out, err := socketTypeFor(types, value.Type())
			if err != nil {
				return node.Signature{}, nil, err
			}
			rule := func([]cty.Value) ([]cty.Value, error) {
				return []cty.Value{value}, nil
			}
			return fixed(nil, out), rule, nil
		},
	}
}

func normalizeConst(v cty.Value) (cty.Value, error) {
	ty := v.Type()
	switch {
	case ty.IsTupleType():
		list, err := convert.Convert(v, cty.List(cty.DynamicPseudoType))
		if err != nil {
			return cty.NilVal, fmt.Errorf("constant list elements must share a type: %w", err)
		}
		return list, nil
	case ty.IsObjectType():
		m, err := convert.Convert(v, cty.Map(cty.DynamicPseudoType))
		if err != nil {
			return cty.NilVal, fmt.Errorf("constant map values must share a type: %w", err)
		}
		return m, nil
	}
	return v, nil
}

// identityKind forwards its input. Params name the socket type, e.g.
// "number" or "list(string)".
func identityKind() *registry.Kind {
	return &registry.Kind{
		Name:        "identity",
		Description: "Forwards its input unchanged.",
		Params:      cty.String,
		ParamsGo:    reflect.TypeOf(""),
		Build: func(params cty.Value, types *sockettype.Registry) (node.Signature, node.Rule, error) {
			t, err := types.Parse(params.AsString())
			if err != nil {
				return node.Signature{}, nil, err
			}
			rule := func(inputs []cty.Value) ([]cty.Value, error) {
				return []cty.Value{inputs[0]}, nil
			}
			return fixed([]sockettype.Type{t}, t), rule, nil
		},
	}
}

// selectKind picks its second input when the condition holds and its third
// otherwise. A null condition selects null.
func selectKind() *registry.Kind {
	return &registry.Kind{
		Name:        "select",
		Description: "Chooses between two inputs on a boolean condition.",
		Params:      cty.String,
		ParamsGo:    reflect.TypeOf(""),
		Build: func(params cty.Value, types *sockettype.Registry) (node.Signature, node.Rule, error) {
			t, err := types.Parse(params.AsString())
			if err != nil {
				return node.Signature{}, nil, err
			}
			rule := func(inputs []cty.Value) ([]cty.Value, error) {
				cond := inputs[0]
				if cond.IsNull() {
					return []cty.Value{sockettype.Null(t)}, nil
				}
				if cond.True() {
					return []cty.Value{inputs[1]}, nil
				}
				return []cty.Value{inputs[2]}, nil
			}
			return fixed([]sockettype.Type{sockettype.Bool, t, t}, t), rule, nil
		},
	}
}
