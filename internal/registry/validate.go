package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Validate performs a parity check between each kind's declared params type
// and the Go struct it decodes params into.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range r.Kinds() {
		k := r.kinds[name]

		if k.ParamsGo == nil {
			continue
		}
		if !k.TakesParams() {
			errs = append(errs, fmt.Sprintf("kind '%s': Go params type %s given, but the kind declares no params", name, k.ParamsGo))
			continue
		}
		if k.Params.Equals(cty.DynamicPseudoType) {
			logger.Warn("Node kind accepts params of any type, which disables static checking.", "kind", name)
			continue
		}

		goType, err := gocty.ImpliedType(reflect.Zero(k.ParamsGo).Interface())
		if err != nil {
			errs = append(errs, fmt.Sprintf("kind '%s': could not imply cty type from Go type %s: %v", name, k.ParamsGo, err))
			continue
		}
		if !goType.Equals(k.Params) {
			errs = append(errs, fmt.Sprintf("kind '%s': type mismatch. Declared params are '%s' but Go type implies '%s'", name, k.Params.FriendlyName(), goType.FriendlyName()))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validation successful.", "kinds", len(r.kinds))
	return nil
}
