package artifact

import (
	"context"
	"fmt"

	"github.com/vk/flowgrid/internal/backend"
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/ir"
	"github.com/vk/flowgrid/internal/sockettype"
	"github.com/zclconf/go-cty/cty"
)

// Session carries feedback values from one pass to the next. It is not safe
// for concurrent use.
type Session struct {
	artifact *Artifact
	process  backend.Process
	feedback []cty.Value
	passes   int
}

// NewSession starts a run. initial seeds feedback slots for the first pass;
// slots not named read null.
func (a *Artifact) NewSession(initial map[ir.FeedbackKey]cty.Value) (*Session, error) {
	feedback := a.nullFeedback()
	for key, v := range initial {
		i, ok := a.prog.FeedbackIndex(key)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFeedback, key)
		}
		slot := a.prog.Feedback[i]
		if !sockettype.Conforms(v, slot.Type) {
			return nil, fmt.Errorf("%w: feedback %s expects %s, got %s", graph.ErrTypeMismatch, key, slot.Type, describe(v))
		}
		feedback[i] = v
	}
	return &Session{artifact: a, process: a.handle.Start(), feedback: feedback}, nil
}

// Invoke runs one pass. A failed pass leaves the session's feedback and
// pass count unchanged. Embedded precompiled artifacts keep their own
// sessions inside the process, and those may already have completed their
// pass when a later instruction fails, so a retry observes their advanced
// state.
func (s *Session) Invoke(ctx context.Context, inputs []cty.Value) ([]cty.Value, error) {
	sig := s.artifact.prog.Signature
	if len(inputs) != len(sig.Inputs) {
		return nil, fmt.Errorf("%w: expected %d inputs, got %d", ErrArityMismatch, len(sig.Inputs), len(inputs))
	}
	for i, v := range inputs {
		if !sockettype.Conforms(v, sig.Inputs[i]) {
			return nil, fmt.Errorf("%w: input %d expects %s, got %s", graph.ErrTypeMismatch, i, sig.Inputs[i], describe(v))
		}
	}

	outputs, next, err := s.process.Pass(ctx, inputs, s.feedback)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}
	s.feedback = next
	s.passes++
	return outputs, nil
}

// Run implements node.Runner.
func (s *Session) Run(ctx context.Context, inputs []cty.Value) ([]cty.Value, error) {
	return s.Invoke(ctx, inputs)
}

// Feedback returns the values the next pass will read.
func (s *Session) Feedback() map[ir.FeedbackKey]cty.Value {
	out := make(map[ir.FeedbackKey]cty.Value, len(s.feedback))
	for i, slot := range s.artifact.prog.Feedback {
		out[slot.Key] = s.feedback[i]
	}
	return out
}

// Passes returns the number of completed passes.
func (s *Session) Passes() int { return s.passes }

func describe(v cty.Value) string {
	if v == cty.NilVal {
		return "nil"
	}
	return v.Type().FriendlyName()
}
