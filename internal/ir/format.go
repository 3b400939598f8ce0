package ir

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// String renders p as a readable listing, one instruction per line.
func (p *Program) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "program %s\n", p.Signature)
	for i, inst := range p.Instructions {
		refs := make([]string, len(inst.Inputs))
		for j, r := range inst.Inputs {
			refs[j] = r.String()
		}
		fmt.Fprintf(&sb, "  %%%d = %s %s %s%s(%s)\n", i, inst.Op, inst.Node, inst.Kind, formatParams(inst.Params), strings.Join(refs, ", "))
	}
	for i, slot := range p.Feedback {
		fmt.Fprintf(&sb, "  fb.%d %s:%s <- %s\n", i, slot.Key, slot.Type, slot.Source)
	}
	outs := make([]string, len(p.Outputs))
	for i, r := range p.Outputs {
		outs[i] = r.String()
	}
	fmt.Fprintf(&sb, "  return %s\n", strings.Join(outs, ", "))
	return sb.String()
}

func formatParams(v cty.Value) string {
	if v == cty.NilVal {
		return ""
	}
	raw, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return "<" + v.Type().FriendlyName() + ">"
	}
	return string(raw)
}
