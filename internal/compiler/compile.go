package compiler

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/flowgrid/internal/artifact"
	"github.com/vk/flowgrid/internal/backend"
	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/ir"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrLowering wraps failures to encode the program or to lower it with the
// backend.
var ErrLowering = errors.New("backend lowering failed")

// Span names.
const (
	SpanCompile = "flowgrid.compile"
	SpanLower   = "flowgrid.lower"
)

// Compile emits g, lowers it with be and returns the artifact.
func Compile(ctx context.Context, g *graph.Graph, be backend.Backend, opts ...Option) (art *artifact.Artifact, err error) {
	if g == nil {
		return nil, fmt.Errorf("compile: nil graph")
	}
	if be == nil {
		return nil, fmt.Errorf("compile: nil backend")
	}
	o := newOptions(opts)
	logger := ctxlog.FromContext(ctx)

	ctx, span := o.tracer.Start(ctx, SpanCompile, trace.WithAttributes(
		attribute.String("flowgrid.backend", be.Name()),
		attribute.Int("flowgrid.nodes", g.Len()),
	))
	defer func() {
		if err != nil {
			setError(span, err)
		}
		span.End()
	}()

	prog, err := Emit(ctx, g)
	if err != nil {
		return nil, err
	}
	encoded, err := ir.Encode(prog)
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %w", ErrLowering, err)
	}
	digest := ir.Digest(encoded)
	span.SetAttributes(
		attribute.Int("flowgrid.instructions", len(prog.Instructions)),
		attribute.Int("flowgrid.feedback_slots", len(prog.Feedback)),
		attribute.String("flowgrid.digest", digest),
	)

	handle, err := lower(ctx, o, be, prog)
	if err != nil {
		return nil, err
	}

	logger.Debug("Compiled graph.",
		"backend", be.Name(),
		"nodes", g.Len(),
		"instructions", len(prog.Instructions),
		"feedback_slots", len(prog.Feedback),
		"digest", digest,
	)
	return artifact.New(prog, handle, be.Name(), digest), nil
}

func lower(ctx context.Context, o *options, be backend.Backend, prog *ir.Program) (backend.Handle, error) {
	ctx, span := o.tracer.Start(ctx, SpanLower, trace.WithAttributes(
		attribute.String("flowgrid.backend", be.Name()),
		attribute.String("flowgrid.backend_version", be.Version()),
	))
	defer span.End()

	handle, err := be.Lower(ctx, prog, prog.Signature)
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrLowering, be.Name(), err)
		setError(span, err)
		return nil, err
	}
	if handle == nil {
		err = fmt.Errorf("%w: %s returned no handle", ErrLowering, be.Name())
		setError(span, err)
		return nil, err
	}
	return handle, nil
}

func setError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
