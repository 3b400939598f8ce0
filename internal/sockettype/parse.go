package sockettype

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// Parse resolves an HCL type expression such as `number`, `list(string)`
// or `map(my_handle)` into a registered type. Collection types built from
// registered element types are registered on the fly.
func (r *Registry) Parse(src string) (Type, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "type", hcl.InitialPos)
	if diags.HasErrors() {
		return Type{}, fmt.Errorf("invalid type expression %q: %w", src, diags)
	}
	return r.ParseExpr(expr)
}

// ParseExpr is like Parse for an already parsed HCL expression.
func (r *Registry) ParseExpr(expr hcl.Expression) (Type, error) {
	switch v := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		if len(v.Args) != 1 {
			return Type{}, fmt.Errorf("type constructors (list, map, set) require exactly one argument, got %d", len(v.Args))
		}

		elem, err := r.ParseExpr(v.Args[0])
		if err != nil {
			return Type{}, err
		}
		if elem.IsAny() {
			return Type{}, fmt.Errorf("collection types cannot contain type 'any'")
		}

		var ty cty.Type
		switch v.Name {
		case "list":
			ty = cty.List(elem.ty)
		case "map":
			ty = cty.Map(elem.ty)
		case "set":
			ty = cty.Set(elem.ty)
		default:
			return Type{}, fmt.Errorf("unknown type constructor function %q", v.Name)
		}
		return r.Register(Descriptor{Name: fmt.Sprintf("%s(%s)", v.Name, elem.name), Type: ty})

	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return Type{}, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		return r.MustLookup(v.Traversal.RootName())

	default:
		return Type{}, fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}

// ParseAll parses each expression in order.
func (r *Registry) ParseAll(srcs ...string) ([]Type, error) {
	out := make([]Type, 0, len(srcs))
	for _, src := range srcs {
		t, err := r.Parse(src)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
