// Package backend declares the contract between the compiler and the code
// generators that turn an IR program into something runnable.
package backend

import (
	"context"

	"github.com/vk/flowgrid/internal/ir"
	"github.com/vk/flowgrid/internal/node"
	"github.com/zclconf/go-cty/cty"
)

// Backend lowers IR programs.
type Backend interface {
	// Name identifies the backend in configuration and diagnostics.
	Name() string
	Version() string
	// Lower turns a validated program into a runnable handle. sig is the
	// external signature the handle must honour.
	Lower(ctx context.Context, prog *ir.Program, sig node.Signature) (Handle, error)
}

// Handle is the lowered form of one program. Handles are immutable and safe
// for concurrent use.
type Handle interface {
	// Code is the backend's serialised output.
	Code() []byte
	// Start begins a run with its own state.
	Start() Process
}

// Process evaluates passes of a lowered program. A process is used by one
// goroutine at a time.
type Process interface {
	// Pass evaluates the program once. feedback holds one value per
	// feedback slot of the program, in slot order, as produced by the
	// previous pass (or the initial values). It returns the external
	// outputs and the feedback values for the next pass.
	Pass(ctx context.Context, inputs, feedback []cty.Value) (outputs, next []cty.Value, err error)
}
