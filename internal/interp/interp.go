// Package interp is the reference backend: it evaluates IR programs
// directly, instruction by instruction. Its Code is the canonical IR
// encoding.
package interp

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/flowgrid/internal/backend"
	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/ir"
	"github.com/vk/flowgrid/internal/node"
	"github.com/vk/flowgrid/internal/sockettype"
	"github.com/zclconf/go-cty/cty"
)

// Name is the backend name used in configuration.
const Name = "interp"

const version = "1"

// ErrContract is returned when a rule returns the wrong number of values or
// a value that does not conform to its output type.
var ErrContract = errors.New("rule broke its output contract")

// ErrRulePanic is returned when a rule panics during a pass.
var ErrRulePanic = errors.New("rule panicked")

// RuleError reports a failure inside one instruction.
type RuleError struct {
	Node string
	Kind string
	Err  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("node %s (%s): %v", e.Node, e.Kind, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

// Backend evaluates IR in process.
type Backend struct{}

var _ backend.Backend = (*Backend)(nil)

// New returns the interpreter backend.
func New() *Backend { return &Backend{} }

func (b *Backend) Name() string    { return Name }
func (b *Backend) Version() string { return version }

// Lower validates prog and wraps it. Programs are evaluated as given; no
// optimisation is applied.
func (b *Backend) Lower(ctx context.Context, prog *ir.Program, sig node.Signature) (backend.Handle, error) {
	if !prog.Signature.Equal(sig) {
		return nil, fmt.Errorf("program signature %s does not match %s", prog.Signature, sig)
	}
	if err := prog.Validate(); err != nil {
		return nil, err
	}
	code, err := ir.Encode(prog)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Lowered program.", "backend", Name, "instructions", len(prog.Instructions), "bytes", len(code))
	return &handle{prog: prog, code: code}, nil
}

type handle struct {
	prog *ir.Program
	code []byte
}

func (h *handle) Code() []byte {
	return append([]byte(nil), h.code...)
}

func (h *handle) Start() backend.Process {
	return &process{prog: h.prog, callees: make(map[int]node.Runner)}
}

type process struct {
	prog *ir.Program
	// callees holds one runner per invoke instruction, started on first
	// use and kept for the life of the process so nested feedback state
	// survives between passes.
	callees map[int]node.Runner
}

func (p *process) Pass(ctx context.Context, inputs, feedback []cty.Value) ([]cty.Value, []cty.Value, error) {
	if len(inputs) != len(p.prog.Signature.Inputs) {
		return nil, nil, fmt.Errorf("expected %d inputs, got %d", len(p.prog.Signature.Inputs), len(inputs))
	}
	if len(feedback) != len(p.prog.Feedback) {
		return nil, nil, fmt.Errorf("expected %d feedback values, got %d", len(p.prog.Feedback), len(feedback))
	}

	f := &frame{inputs: inputs, feedback: feedback, results: make([][]cty.Value, len(p.prog.Instructions))}
	for i, inst := range p.prog.Instructions {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		args := make([]cty.Value, len(inst.Inputs))
		for j, r := range inst.Inputs {
			v, err := f.read(r)
			if err != nil {
				return nil, nil, &RuleError{Node: inst.Node, Kind: inst.Kind, Err: fmt.Errorf("input %d: %w", j, err)}
			}
			args[j] = v
		}

		out, err := p.exec(ctx, i, inst, args)
		if err != nil {
			return nil, nil, &RuleError{Node: inst.Node, Kind: inst.Kind, Err: err}
		}
		if err := checkOutputs(out, inst.Outputs); err != nil {
			return nil, nil, &RuleError{Node: inst.Node, Kind: inst.Kind, Err: err}
		}
		f.results[i] = out
	}

	outputs, err := f.readAll(p.prog.Outputs)
	if err != nil {
		return nil, nil, err
	}
	next := make([]cty.Value, len(p.prog.Feedback))
	for i, slot := range p.prog.Feedback {
		v, err := f.read(slot.Source)
		if err != nil {
			return nil, nil, fmt.Errorf("feedback %s: %w", slot.Key, err)
		}
		next[i] = v
	}
	return outputs, next, nil
}

func (p *process) exec(ctx context.Context, i int, inst ir.Instruction, args []cty.Value) (out []cty.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrRulePanic, r)
		}
	}()
	switch inst.Op {
	case ir.OpPrimitive:
		return inst.Rule(args)
	case ir.OpInvoke:
		runner, ok := p.callees[i]
		if !ok {
			runner = inst.Callee.Start()
			p.callees[i] = runner
		}
		return runner.Run(ctx, args)
	default:
		return nil, fmt.Errorf("unknown op %s", inst.Op)
	}
}

func checkOutputs(out []cty.Value, types []sockettype.Type) error {
	if len(out) != len(types) {
		return fmt.Errorf("%w: returned %d values for %d outputs", ErrContract, len(out), len(types))
	}
	for i, v := range out {
		if !sockettype.Conforms(v, types[i]) {
			got := "nil"
			if v != cty.NilVal {
				got = v.Type().FriendlyName()
			}
			return fmt.Errorf("%w: output %d is %s, want %s", ErrContract, i, got, types[i])
		}
	}
	return nil
}

type frame struct {
	inputs   []cty.Value
	feedback []cty.Value
	results  [][]cty.Value
}

func (f *frame) read(r ir.Ref) (cty.Value, error) {
	var v cty.Value
	switch r.Source {
	case ir.SourceNull:
		return sockettype.Null(r.As), nil
	case ir.SourceResult:
		v = f.results[r.Instr][r.Index]
	case ir.SourceInput:
		v = f.inputs[r.Index]
	case ir.SourceFeedback:
		v = f.feedback[r.Index]
	default:
		return cty.NilVal, fmt.Errorf("unknown source %s", r.Source)
	}
	if !r.Convert {
		return v, nil
	}
	if v.IsNull() {
		return sockettype.Null(r.As), nil
	}
	return sockettype.Convert(v, r.As)
}

func (f *frame) readAll(refs []ir.Ref) ([]cty.Value, error) {
	out := make([]cty.Value, len(refs))
	for i, r := range refs {
		v, err := f.read(r)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
