package node

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// Rule computes a primitive node's outputs from its inputs. It receives one
// value per input socket, in socket order, and must return one value per
// output socket. Rules must not retain the input slice.
type Rule func(inputs []cty.Value) ([]cty.Value, error)

// Primitive is the body of a leaf node.
type Primitive struct {
	// Kind names the registered primitive kind, e.g. "add".
	Kind string
	// Params are the construction parameters of the kind. They take part in
	// the canonical encoding of compiled programs, so they must be
	// serialisable as cty JSON. cty.NilVal means "no params".
	Params cty.Value
	Rule   Rule
}

// Runner evaluates one pass of a compiled program.
type Runner interface {
	Run(ctx context.Context, inputs []cty.Value) ([]cty.Value, error)
}

// Precompiled is implemented by compiled artifacts so they can be embedded
// as the body of a node without recompiling their source graph.
type Precompiled interface {
	Signature() Signature
	Digest() string
	// Start returns a runner with its own feedback state. Every embedding
	// node instance in an enclosing run gets its own runner.
	Start() Runner
}
