package core

import (
	"errors"

	"github.com/vk/flowgrid/internal/node"
	"github.com/vk/flowgrid/internal/registry"
	"github.com/vk/flowgrid/internal/sockettype"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// ErrDivisionByZero is returned by div and mod rules.
var ErrDivisionByZero = errors.New("division by zero")

func binaryKind(name, desc string, in, out sockettype.Type, fn func(a, b cty.Value) (cty.Value, error)) *registry.Kind {
	return &registry.Kind{
		Name:        name,
		Description: desc,
		Build: func(cty.Value, *sockettype.Registry) (node.Signature, node.Rule, error) {
			rule := nullSafe(out, func(args []cty.Value) (cty.Value, error) {
				return fn(args[0], args[1])
			})
			return fixed(repeat(in, 2), out), rule, nil
		},
	}
}

func unaryKind(name, desc string, in, out sockettype.Type, fn func(a cty.Value) (cty.Value, error)) *registry.Kind {
	return &registry.Kind{
		Name:        name,
		Description: desc,
		Build: func(cty.Value, *sockettype.Registry) (node.Signature, node.Rule, error) {
			rule := nullSafe(out, func(args []cty.Value) (cty.Value, error) {
				return fn(args[0])
			})
			return fixed([]sockettype.Type{in}, out), rule, nil
		},
	}
}

func nonZero(fn func(a, b cty.Value) (cty.Value, error)) func(a, b cty.Value) (cty.Value, error) {
	return func(a, b cty.Value) (cty.Value, error) {
		if b.Equals(cty.Zero).True() {
			return cty.NilVal, ErrDivisionByZero
		}
		return fn(a, b)
	}
}

func arithmeticKinds() []*registry.Kind {
	num := sockettype.Number
	return []*registry.Kind{
		binaryKind("add", "Adds two numbers.", num, num, stdlib.Add),
		binaryKind("sub", "Subtracts the second number from the first.", num, num, stdlib.Subtract),
		binaryKind("mul", "Multiplies two numbers.", num, num, stdlib.Multiply),
		binaryKind("div", "Divides the first number by the second.", num, num, nonZero(stdlib.Divide)),
		binaryKind("mod", "Remainder of dividing the first number by the second.", num, num, nonZero(stdlib.Modulo)),
		unaryKind("neg", "Negates a number.", num, num, stdlib.Negate),
		unaryKind("abs", "Absolute value of a number.", num, num, stdlib.Absolute),
	}
}

func comparisonKinds() []*registry.Kind {
	num, b := sockettype.Number, sockettype.Bool
	return []*registry.Kind{
		binaryKind("gt", "Reports whether the first number is greater.", num, b, stdlib.GreaterThan),
		binaryKind("lt", "Reports whether the first number is smaller.", num, b, stdlib.LessThan),
		binaryKind("gte", "Reports whether the first number is greater or equal.", num, b, stdlib.GreaterThanOrEqualTo),
		binaryKind("lte", "Reports whether the first number is smaller or equal.", num, b, stdlib.LessThanOrEqualTo),
		binaryKind("eq", "Reports whether two values are equal.", sockettype.Any, b, stdlib.Equal),
	}
}

func logicKinds() []*registry.Kind {
	b := sockettype.Bool
	return []*registry.Kind{
		binaryKind("and", "Logical conjunction.", b, b, stdlib.And),
		binaryKind("or", "Logical disjunction.", b, b, stdlib.Or),
		unaryKind("not", "Logical negation.", b, b, stdlib.Not),
	}
}
