package ir

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vk/flowgrid/internal/nodeid"
)

// ErrInvalidProgram is returned by Validate.
var ErrInvalidProgram = errors.New("invalid program")

// Validate checks that every reference points at something that exists
// when it is read: results of earlier instructions only, inputs and feedback
// slots within range. Instruction nodes and feedback keys must be qualified
// node addresses.
func (p *Program) Validate() error {
	for i, inst := range p.Instructions {
		if _, err := nodeid.Parse(inst.Node); err != nil {
			return p.invalid("instruction %d: %v", i, err)
		}
		switch inst.Op {
		case OpPrimitive:
			if inst.Rule == nil {
				return p.invalid("instruction %d (%s) has no rule", i, inst.Node)
			}
		case OpInvoke:
			if inst.Callee == nil {
				return p.invalid("instruction %d (%s) has no callee", i, inst.Node)
			}
		default:
			return p.invalid("instruction %d (%s) has unknown op %s", i, inst.Node, inst.Op)
		}
		for j, r := range inst.Inputs {
			if err := p.checkRef(r, i); err != nil {
				return p.invalid("instruction %d (%s) input %d: %v", i, inst.Node, j, err)
			}
		}
	}

	n := len(p.Instructions)
	for i, slot := range p.Feedback {
		if _, err := nodeid.Parse(slot.Key.Node); err != nil {
			return p.invalid("feedback slot %d: %v", i, err)
		}
		if i > 0 && !keyLess(p.Feedback[i-1].Key, slot.Key) {
			return p.invalid("feedback slots are not strictly ordered at %s", slot.Key)
		}
		if slot.Source.Source != SourceResult && slot.Source.Source != SourceNull {
			return p.invalid("feedback slot %s must capture a result", slot.Key)
		}
		if err := p.checkRef(slot.Source, n); err != nil {
			return p.invalid("feedback slot %s: %v", slot.Key, err)
		}
	}

	if len(p.Outputs) != len(p.Signature.Outputs) {
		return p.invalid("%d output refs for %d outputs", len(p.Outputs), len(p.Signature.Outputs))
	}
	for i, r := range p.Outputs {
		if err := p.checkRef(r, n); err != nil {
			return p.invalid("output %d: %v", i, err)
		}
	}
	return nil
}

// checkRef validates r as read by code running before instruction limit.
func (p *Program) checkRef(r Ref, limit int) error {
	switch r.Source {
	case SourceNull:
		if r.As.IsZero() {
			return fmt.Errorf("null reference without type")
		}
	case SourceResult:
		if r.Instr < 0 || r.Instr >= limit {
			return fmt.Errorf("reference to instruction %d is out of order", r.Instr)
		}
		if r.Index < 0 || r.Index >= len(p.Instructions[r.Instr].Outputs) {
			return fmt.Errorf("instruction %d has no output %d", r.Instr, r.Index)
		}
	case SourceInput:
		if r.Index < 0 || r.Index >= len(p.Signature.Inputs) {
			return fmt.Errorf("no external input %d", r.Index)
		}
	case SourceFeedback:
		if r.Index < 0 || r.Index >= len(p.Feedback) {
			return fmt.Errorf("no feedback slot %d", r.Index)
		}
	default:
		return fmt.Errorf("unknown source %s", r.Source)
	}
	if r.Convert && r.As.IsZero() {
		return fmt.Errorf("conversion without target type")
	}
	return nil
}

func (p *Program) invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidProgram, fmt.Sprintf(format, args...))
}

func keyLess(a, b FeedbackKey) bool {
	if a.Node != b.Node {
		return a.Node < b.Node
	}
	return a.Socket < b.Socket
}

// SortKeys orders feedback keys by node address, then socket.
func SortKeys(keys []FeedbackKey) {
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
}
