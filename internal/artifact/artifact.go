// Package artifact holds the result of compiling a graph: an immutable,
// type-checked callable that can run on its own or be embedded as a node in
// another graph.
package artifact

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/flowgrid/internal/backend"
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/ir"
	"github.com/vk/flowgrid/internal/node"
	"github.com/zclconf/go-cty/cty"
)

var (
	// ErrArityMismatch is returned when a caller passes the wrong number of
	// inputs.
	ErrArityMismatch = errors.New("arity mismatch")
	// ErrRuntime wraps failures raised while a program runs.
	ErrRuntime = errors.New("runtime failure")
	// ErrUnknownFeedback is returned for initial values keyed by a feedback
	// slot the program does not have.
	ErrUnknownFeedback = errors.New("unknown feedback slot")
)

// Artifact is a compiled graph. It is immutable and safe for concurrent
// use; per-run state lives in sessions.
type Artifact struct {
	prog    *ir.Program
	handle  backend.Handle
	backend string
	digest  string
}

var _ node.Precompiled = (*Artifact)(nil)

// New assembles an artifact. digest identifies prog, normally
// ir.Digest(ir.Encode(prog)).
func New(prog *ir.Program, handle backend.Handle, backendName, digest string) *Artifact {
	return &Artifact{prog: prog, handle: handle, backend: backendName, digest: digest}
}

// Signature returns the external input and output types.
func (a *Artifact) Signature() node.Signature { return a.prog.Signature.Clone() }

// Program returns the IR the artifact was lowered from. Callers must not
// modify it.
func (a *Artifact) Program() *ir.Program { return a.prog }

// Code returns the backend output.
func (a *Artifact) Code() []byte { return a.handle.Code() }

// Digest returns the hex SHA-256 of the canonical IR encoding.
func (a *Artifact) Digest() string { return a.digest }

// Backend returns the name of the backend that lowered the program.
func (a *Artifact) Backend() string { return a.backend }

// FeedbackKeys lists the feedback slots in slot order.
func (a *Artifact) FeedbackKeys() []ir.FeedbackKey {
	keys := make([]ir.FeedbackKey, len(a.prog.Feedback))
	for i, slot := range a.prog.Feedback {
		keys[i] = slot.Key
	}
	return keys
}

// Invoke runs one pass with a fresh session, so every feedback slot reads
// null.
func (a *Artifact) Invoke(ctx context.Context, inputs []cty.Value) ([]cty.Value, error) {
	s, err := a.NewSession(nil)
	if err != nil {
		return nil, err
	}
	return s.Invoke(ctx, inputs)
}

// Start implements node.Precompiled. Each runner owns a session starting
// from null feedback values.
func (a *Artifact) Start() node.Runner {
	return &Session{artifact: a, process: a.handle.Start(), feedback: a.nullFeedback()}
}

// AsNode wraps the artifact as a node body.
func (a *Artifact) AsNode(id string) (*graph.Node, error) {
	return graph.NewCompiledNode(id, a)
}

func (a *Artifact) nullFeedback() []cty.Value {
	values := make([]cty.Value, len(a.prog.Feedback))
	for i, slot := range a.prog.Feedback {
		values[i] = cty.NullVal(slot.Type.Cty())
	}
	return values
}

func (a *Artifact) String() string {
	return fmt.Sprintf("artifact %s %s (%s)", a.digest[:min(12, len(a.digest))], a.prog.Signature, a.backend)
}
