package ir

import (
	"fmt"

	"github.com/vk/flowgrid/internal/node"
	"github.com/vk/flowgrid/internal/sockettype"
	"github.com/zclconf/go-cty/cty"
)

// Op is an instruction opcode.
type Op uint8

const (
	// OpPrimitive evaluates a primitive rule.
	OpPrimitive Op = iota + 1
	// OpInvoke runs a precompiled artifact.
	OpInvoke
)

// KindInvoke is the Kind of every OpInvoke instruction.
const KindInvoke = "invoke"

func (o Op) String() string {
	switch o {
	case OpPrimitive:
		return "prim"
	case OpInvoke:
		return "invoke"
	default:
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
}

// Source tells where a Ref reads its value from.
type Source uint8

const (
	// SourceNull yields the null value of Ref.As.
	SourceNull Source = iota
	// SourceResult reads output Index of instruction Instr.
	SourceResult
	// SourceInput reads external input Index.
	SourceInput
	// SourceFeedback reads feedback slot Index, i.e. a value produced on
	// the previous pass.
	SourceFeedback
)

func (s Source) String() string {
	switch s {
	case SourceNull:
		return "null"
	case SourceResult:
		return "result"
	case SourceInput:
		return "input"
	case SourceFeedback:
		return "feedback"
	default:
		return fmt.Sprintf("Source(%d)", uint8(s))
	}
}

// Ref is a value reference.
type Ref struct {
	Source Source
	Instr  int
	Index  int
	// As is the type the consumer expects. Values are converted to it when
	// Convert is set; for SourceNull it is the type of the null.
	As      sockettype.Type
	Convert bool
}

func (r Ref) String() string {
	var s string
	switch r.Source {
	case SourceNull:
		return fmt.Sprintf("null:%s", r.As)
	case SourceResult:
		s = fmt.Sprintf("%%%d.%d", r.Instr, r.Index)
	case SourceInput:
		s = fmt.Sprintf("in.%d", r.Index)
	case SourceFeedback:
		s = fmt.Sprintf("fb.%d", r.Index)
	default:
		s = r.Source.String()
	}
	if r.Convert {
		s += " as " + r.As.String()
	}
	return s
}

// Instruction evaluates one node.
type Instruction struct {
	Op Op
	// Node is the qualified address of the source node, e.g. "outer.inner".
	Node string
	// Kind is the primitive kind, or KindInvoke.
	Kind    string
	Params  cty.Value
	Inputs  []Ref
	Outputs []sockettype.Type

	// Rule is set for OpPrimitive. It is not part of the encoding; Kind and
	// Params identify it.
	Rule node.Rule
	// Callee is set for OpInvoke and encoded by its digest.
	Callee node.Precompiled
}

// FeedbackKey identifies a feedback cache: the qualified node address and
// output index whose previous value is read.
type FeedbackKey struct {
	Node   string
	Socket int
}

func (k FeedbackKey) String() string {
	return fmt.Sprintf("%s[%d]", k.Node, k.Socket)
}

// FeedbackSlot is a value carried from one pass to the next.
type FeedbackSlot struct {
	Key  FeedbackKey
	Type sockettype.Type
	// Source is the result captured at the end of a pass.
	Source Ref
}

// Program is a compiled graph.
type Program struct {
	Signature    node.Signature
	Instructions []Instruction
	// Feedback slots are ordered by key.
	Feedback []FeedbackSlot
	// Outputs has one reference per external output.
	Outputs []Ref
}

// FeedbackIndex returns the slot position of key.
func (p *Program) FeedbackIndex(key FeedbackKey) (int, bool) {
	for i, slot := range p.Feedback {
		if slot.Key == key {
			return i, true
		}
	}
	return -1, false
}
