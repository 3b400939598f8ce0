package registry

import (
	"fmt"

	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/node"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// NewNode builds a primitive node of the named kind. params may be
// cty.NilVal for kinds without params.
func (r *Registry) NewNode(id, kind string, params cty.Value) (*graph.Node, error) {
	k, ok := r.Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q (node %q)", ErrUnknownKind, kind, id)
	}

	params, err := k.convertParams(params)
	if err != nil {
		return nil, fmt.Errorf("node %q of kind %q: %w", id, kind, err)
	}

	sig, rule, err := k.Build(params, r.types)
	if err != nil {
		return nil, fmt.Errorf("%w: node %q of kind %q: %v", ErrInvalidParams, id, kind, err)
	}

	return graph.NewPrimitive(id, sig.Inputs, sig.Outputs, node.Primitive{
		Kind:   kind,
		Params: params,
		Rule:   rule,
	})
}

func (k *Kind) convertParams(params cty.Value) (cty.Value, error) {
	given := params != cty.NilVal && !params.IsNull()
	if !k.TakesParams() {
		if given {
			return cty.NilVal, fmt.Errorf("%w: kind takes no params", ErrInvalidParams)
		}
		return cty.NilVal, nil
	}
	if !given {
		return cty.NilVal, fmt.Errorf("%w: params of type %s are required", ErrInvalidParams, k.Params.FriendlyName())
	}
	if !params.IsWhollyKnown() {
		return cty.NilVal, fmt.Errorf("%w: params must be known values", ErrInvalidParams)
	}

	converted, err := convert.Convert(params, k.Params)
	if err != nil {
		return cty.NilVal, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return converted, nil
}
