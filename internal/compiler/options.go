package compiler

import (
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/vk/flowgrid/internal/compiler"

type options struct {
	tracer trace.Tracer
}

// Option configures a compilation.
type Option func(*options)

// WithTracer records compile and lowering spans with t.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{tracer: noop.NewTracerProvider().Tracer(tracerName)}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
