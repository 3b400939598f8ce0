// This file contains the logic for translating HCL schema structs into the
// format-agnostic definition model.

package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/flowgrid/internal/config"
	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/schema"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// paramsContext is the evaluation context for `params` expressions. It
// offers pure functions only, so the same file always yields the same
// params.
var paramsContext = &hcl.EvalContext{
	Functions: map[string]function.Function{
		"abs":        stdlib.AbsoluteFunc,
		"concat":     stdlib.ConcatFunc,
		"format":     stdlib.FormatFunc,
		"jsondecode": stdlib.JSONDecodeFunc,
		"jsonencode": stdlib.JSONEncodeFunc,
		"join":       stdlib.JoinFunc,
		"lower":      stdlib.LowerFunc,
		"max":        stdlib.MaxFunc,
		"merge":      stdlib.MergeFunc,
		"min":        stdlib.MinFunc,
		"range":      stdlib.RangeFunc,
		"upper":      stdlib.UpperFunc,
	},
}

func translateGraph(ctx context.Context, filename string, g *schema.Graph) (*config.Graph, error) {
	logger := ctxlog.FromContext(ctx).With("graph", g.Name, "file", filename)
	logger.Debug("Translating HCL graph to internal config model.", "nodes", len(g.Nodes), "edges", len(g.Edges))

	out := &config.Graph{Name: g.Name, Source: filename}
	for _, n := range g.Nodes {
		params, err := evalParams(n.Params)
		if err != nil {
			return nil, fmt.Errorf("%s: graph %q, node %q: %w", filename, g.Name, n.ID, err)
		}
		out.Nodes = append(out.Nodes, &config.Node{
			ID:     n.ID,
			Kind:   n.Kind,
			Graph:  n.Graph,
			Params: params,
		})
	}
	for _, e := range g.Edges {
		out.Edges = append(out.Edges, &config.Edge{
			From:       e.From,
			FromSocket: e.FromSocket,
			To:         e.To,
			ToSocket:   e.ToSocket,
			Feedback:   e.Feedback,
		})
	}
	out.Inputs = translatePorts(g.Inputs)
	out.Outputs = translatePorts(g.Outputs)
	return out, nil
}

func translatePorts(ports []*schema.Port) []*config.Port {
	out := make([]*config.Port, 0, len(ports))
	for _, p := range ports {
		out = append(out, &config.Port{Name: p.Name, Node: p.Node, Socket: p.Socket})
	}
	return out
}

// evalParams evaluates a `params` expression. An omitted attribute decodes
// to a null expression and yields cty.NilVal.
func evalParams(expr hcl.Expression) (cty.Value, error) {
	if expr == nil {
		return cty.NilVal, nil
	}
	val, diags := expr.Value(paramsContext)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("invalid params: %w", diags)
	}
	if val.IsNull() {
		return cty.NilVal, nil
	}
	if !val.IsWhollyKnown() {
		return cty.NilVal, fmt.Errorf("invalid params: value must be known")
	}
	return val, nil
}
