package app

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// paramsValue turns optional Go params into a cty value. A cty.Value is
// used as is; other values are converted with their implied type.
func paramsValue(params []any) (cty.Value, error) {
	switch len(params) {
	case 0:
		return cty.NilVal, nil
	case 1:
	default:
		return cty.NilVal, fmt.Errorf("expected at most one params value, got %d", len(params))
	}

	if v, ok := params[0].(cty.Value); ok {
		return v, nil
	}
	ty, err := gocty.ImpliedType(params[0])
	if err != nil {
		return cty.NilVal, fmt.Errorf("params: %w", err)
	}
	return gocty.ToCtyValue(params[0], ty)
}
