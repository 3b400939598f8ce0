package core

import (
	"fmt"

	"github.com/vk/flowgrid/internal/node"
	"github.com/vk/flowgrid/internal/sockettype"
	"github.com/zclconf/go-cty/cty"
)

// nullSafe wraps fn so that any null input yields a null result of out
// instead of calling fn.
func nullSafe(out sockettype.Type, fn func(args []cty.Value) (cty.Value, error)) node.Rule {
	return func(inputs []cty.Value) ([]cty.Value, error) {
		for _, v := range inputs {
			if v.IsNull() {
				return []cty.Value{sockettype.Null(out)}, nil
			}
		}
		v, err := fn(inputs)
		if err != nil {
			return nil, err
		}
		return []cty.Value{v}, nil
	}
}

func repeat(t sockettype.Type, n int) []sockettype.Type {
	out := make([]sockettype.Type, n)
	for i := range out {
		out[i] = t
	}
	return out
}

func fixed(ins []sockettype.Type, out sockettype.Type) node.Signature {
	return node.Signature{Inputs: ins, Outputs: []sockettype.Type{out}}
}

// socketTypeFor finds or registers a socket type for a cty type. Tuples and
// objects are not socket types; callers convert them to collections first.
func socketTypeFor(types *sockettype.Registry, ty cty.Type) (sockettype.Type, error) {
	switch {
	case ty.Equals(cty.Number):
		return sockettype.Number, nil
	case ty.Equals(cty.String):
		return sockettype.String, nil
	case ty.Equals(cty.Bool):
		return sockettype.Bool, nil
	case ty.Equals(cty.DynamicPseudoType):
		return sockettype.Any, nil
	}

	var ctor string
	switch {
	case ty.IsListType():
		ctor = "list"
	case ty.IsMapType():
		ctor = "map"
	case ty.IsSetType():
		ctor = "set"
	default:
		return sockettype.Type{}, fmt.Errorf("values of type %s cannot flow through sockets", ty.FriendlyName())
	}

	elem, err := socketTypeFor(types, ty.ElementType())
	if err != nil {
		return sockettype.Type{}, err
	}
	if elem.IsAny() {
		return sockettype.Type{}, fmt.Errorf("collection of mixed types %s cannot flow through sockets", ty.FriendlyName())
	}
	return types.Register(sockettype.Descriptor{Name: fmt.Sprintf("%s(%s)", ctor, elem.Name()), Type: ty})
}
