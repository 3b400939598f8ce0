package core

import (
	"fmt"
	"reflect"

	"github.com/vk/flowgrid/internal/node"
	"github.com/vk/flowgrid/internal/registry"
	"github.com/vk/flowgrid/internal/sockettype"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"
)

func concatKind() *registry.Kind {
	str := sockettype.String
	return binaryKind("concat", "Joins two strings.", str, str, func(a, b cty.Value) (cty.Value, error) {
		return cty.StringVal(a.AsString() + b.AsString()), nil
	})
}

// FormatParams configures a format node.
type FormatParams struct {
	Format string `cty:"format"`
	Args   int    `cty:"args"`
}

// formatKind renders its inputs with a printf-style template, following
// the cty format function.
func formatKind() *registry.Kind {
	paramsType, _ := gocty.ImpliedType(FormatParams{})
	return &registry.Kind{
		Name:        "format",
		Description: "Formats its inputs with a template.",
		Params:      paramsType,
		ParamsGo:    reflect.TypeOf(FormatParams{}),
		Build: func(params cty.Value, _ *sockettype.Registry) (node.Signature, node.Rule, error) {
			var p FormatParams
			if err := gocty.FromCtyValue(params, &p); err != nil {
				return node.Signature{}, nil, err
			}
			if p.Args < 0 {
				return node.Signature{}, nil, fmt.Errorf("args must not be negative, got %d", p.Args)
			}

			format := cty.StringVal(p.Format)
			rule := func(inputs []cty.Value) ([]cty.Value, error) {
				v, err := stdlib.Format(format, inputs...)
				if err != nil {
					return nil, err
				}
				return []cty.Value{v}, nil
			}
			return fixed(repeat(sockettype.Any, p.Args), sockettype.String), rule, nil
		},
	}
}
