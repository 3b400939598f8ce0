package compiler

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/dag"
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/ir"
	"github.com/vk/flowgrid/internal/nodeid"
	"github.com/vk/flowgrid/internal/sockettype"
)

// Emit produces the IR program of g without lowering it.
func Emit(ctx context.Context, g *graph.Graph) (*ir.Program, error) {
	sig := g.Signature()
	e := &emitter{
		ctx:   ctx,
		prog:  &ir.Program{Signature: sig},
		slots: make(map[ir.FeedbackKey]*slot),
	}

	inputs := make([]ir.Ref, len(sig.Inputs))
	for i, t := range sig.Inputs {
		inputs[i] = ir.Ref{Source: ir.SourceInput, Index: i, As: t}
	}

	outputs, err := e.emitGraph(g, nil, inputs)
	if err != nil {
		return nil, err
	}
	e.prog.Outputs = outputs
	e.finishFeedback()

	if err := e.prog.Validate(); err != nil {
		return nil, fmt.Errorf("emitted program is inconsistent: %w", err)
	}
	return e.prog, nil
}

// slot is a feedback slot under construction. Slots get their final index
// once all of them are known, since the index follows key order.
type slot struct {
	key         ir.FeedbackKey
	typ         sockettype.Type
	provisional int
	source      ir.Ref
}

type emitter struct {
	ctx   context.Context
	prog  *ir.Program
	slots map[ir.FeedbackKey]*slot
	// stack holds the graphs being emitted, outermost first.
	stack []*graph.Graph
}

// emitGraph emits g with inputs bound to the given refs and returns one ref
// per external output.
func (e *emitter) emitGraph(g *graph.Graph, addr *nodeid.Address, inputs []ir.Ref) ([]ir.Ref, error) {
	for _, outer := range e.stack {
		if outer == g {
			path := make([]string, 0, addr.Depth())
			for i := range addr.Path {
				path = append(path, (&nodeid.Address{Path: addr.Path[:i+1]}).String())
			}
			return nil, &graph.CycleError{Nodes: sortStrings(path), Path: path}
		}
	}
	e.stack = append(e.stack, g)
	defer func() { e.stack = e.stack[:len(e.stack)-1] }()

	plan, err := dag.Resolve(g)
	if err != nil {
		return nil, qualifyCycle(err, addr)
	}
	ctxlog.FromContext(e.ctx).Debug("Resolved evaluation order.", "graph", addr.String(), "order", plan.Order, "feedback", len(plan.Feedback))

	results := make(map[string][]ir.Ref, len(plan.Order))
	for _, id := range plan.Order {
		n, _ := g.Node(id)
		args, err := e.bindInputs(g, addr, n, inputs, results)
		if err != nil {
			return nil, err
		}

		qualified := addr.Qualify(id)
		switch n.Kind() {
		case graph.BodyPrimitive:
			prim, _ := n.Primitive()
			results[id] = e.append(ir.Instruction{
				Op:      ir.OpPrimitive,
				Node:    qualified,
				Kind:    prim.Kind,
				Params:  prim.Params,
				Inputs:  args,
				Outputs: n.Signature().Outputs,
				Rule:    prim.Rule,
			})

		case graph.BodyCompiled:
			callee, _ := n.Compiled()
			results[id] = e.append(ir.Instruction{
				Op:      ir.OpInvoke,
				Node:    qualified,
				Kind:    ir.KindInvoke,
				Inputs:  args,
				Outputs: n.Signature().Outputs,
				Callee:  callee,
			})

		case graph.BodySubGraph:
			sub, _ := n.SubGraph()
			if current := sub.Signature(); !current.Equal(n.Signature()) {
				return nil, fmt.Errorf("%w: node %s was built for %s but its graph now exposes %s",
					graph.ErrTypeMismatch, qualified, n.Signature(), current)
			}
			outs, err := e.emitGraph(sub, addr.Child(nodeid.NewSegment(id)), args)
			if err != nil {
				return nil, err
			}
			results[id] = outs

		default:
			return nil, fmt.Errorf("node %s has unknown body %s", qualified, n.Kind())
		}
	}

	for _, fb := range plan.Feedback {
		key := ir.FeedbackKey{Node: addr.Qualify(fb.From.Node), Socket: fb.From.Socket}
		e.slots[key].source = results[fb.From.Node][fb.From.Socket]
	}

	outputs := make([]ir.Ref, 0, len(g.ExternalOutputs()))
	for _, ext := range g.ExternalOutputs() {
		outputs = append(outputs, results[ext.Node][ext.Socket])
	}
	return outputs, nil
}

// bindInputs builds the input refs of n. An input is fed by an edge, by an
// external input of g, or reads null.
func (e *emitter) bindInputs(g *graph.Graph, addr *nodeid.Address, n *graph.Node, inputs []ir.Ref, results map[string][]ir.Ref) ([]ir.Ref, error) {
	sig := n.Signature()
	args := make([]ir.Ref, len(sig.Inputs))
	for i, dst := range sig.Inputs {
		ep := graph.Endpoint{Node: n.ID(), Socket: i}

		if edge, ok := g.IncomingEdge(ep); ok {
			src, _ := g.Node(edge.From.Node)
			srcType, _ := src.OutputType(edge.From.Socket)

			var ref ir.Ref
			if edge.Feedback {
				ref = e.feedbackRef(ir.FeedbackKey{Node: addr.Qualify(edge.From.Node), Socket: edge.From.Socket}, srcType)
			} else {
				produced, ok := results[edge.From.Node]
				if !ok {
					return nil, fmt.Errorf("node %s reads %s before it is evaluated", addr.Qualify(n.ID()), addr.Qualify(edge.From.Node))
				}
				ref = produced[edge.From.Socket]
			}
			args[i] = retarget(ref, srcType, dst)
			continue
		}

		if idx, ok := g.ExternalInputIndex(ep); ok {
			args[i] = inputs[idx]
			continue
		}

		args[i] = ir.Ref{Source: ir.SourceNull, As: dst}
	}
	return args, nil
}

// retarget makes ref deliver values of type dst.
func retarget(ref ir.Ref, src, dst sockettype.Type) ir.Ref {
	ref.As = dst
	ref.Convert = sockettype.NeedsConversion(src, dst)
	if !ref.Convert && dst.IsAny() {
		ref.As = src
	}
	return ref
}

func (e *emitter) feedbackRef(key ir.FeedbackKey, t sockettype.Type) ir.Ref {
	s, ok := e.slots[key]
	if !ok {
		s = &slot{key: key, typ: t, provisional: len(e.slots)}
		e.slots[key] = s
	}
	return ir.Ref{Source: ir.SourceFeedback, Index: s.provisional, As: t}
}

func (e *emitter) append(inst ir.Instruction) []ir.Ref {
	idx := len(e.prog.Instructions)
	e.prog.Instructions = append(e.prog.Instructions, inst)

	refs := make([]ir.Ref, len(inst.Outputs))
	for i, t := range inst.Outputs {
		refs[i] = ir.Ref{Source: ir.SourceResult, Instr: idx, Index: i, As: t}
	}
	return refs
}

// finishFeedback orders the slots by key and rewrites provisional indices.
func (e *emitter) finishFeedback() {
	if len(e.slots) == 0 {
		return
	}

	keys := make([]ir.FeedbackKey, 0, len(e.slots))
	for k := range e.slots {
		keys = append(keys, k)
	}
	ir.SortKeys(keys)

	remap := make(map[int]int, len(keys))
	e.prog.Feedback = make([]ir.FeedbackSlot, len(keys))
	for i, k := range keys {
		s := e.slots[k]
		remap[s.provisional] = i
		e.prog.Feedback[i] = ir.FeedbackSlot{Key: k, Type: s.typ, Source: s.source}
	}

	fix := func(r *ir.Ref) {
		if r.Source == ir.SourceFeedback {
			r.Index = remap[r.Index]
		}
	}
	for i := range e.prog.Instructions {
		for j := range e.prog.Instructions[i].Inputs {
			fix(&e.prog.Instructions[i].Inputs[j])
		}
	}
	for i := range e.prog.Outputs {
		fix(&e.prog.Outputs[i])
	}
	for i := range e.prog.Feedback {
		fix(&e.prog.Feedback[i].Source)
	}
}

func qualifyCycle(err error, addr *nodeid.Address) error {
	var cycleErr *graph.CycleError
	if !errors.As(err, &cycleErr) || addr.Depth() == 0 {
		return err
	}
	q := &graph.CycleError{Nodes: make([]string, len(cycleErr.Nodes)), Path: make([]string, len(cycleErr.Path))}
	for i, id := range cycleErr.Nodes {
		q.Nodes[i] = addr.Qualify(id)
	}
	for i, id := range cycleErr.Path {
		q.Path[i] = addr.Qualify(id)
	}
	return q
}

func sortStrings(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
