package app

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/vk/flowgrid/internal/artifact"
	"github.com/vk/flowgrid/internal/backend"
	"github.com/vk/flowgrid/internal/builder"
	"github.com/vk/flowgrid/internal/compiler"
	"github.com/vk/flowgrid/internal/config"
	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/hcl"
	"github.com/vk/flowgrid/internal/interp"
	"github.com/vk/flowgrid/internal/registry"
	"github.com/vk/flowgrid/internal/sockettype"
	"github.com/vk/flowgrid/internal/yamlgraph"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vk/flowgrid"

// ErrNoDefinitions is returned by CompileFiles when no definition paths are
// configured.
var ErrNoDefinitions = errors.New("no definition paths configured")

// Engine encapsulates the compilation core's dependencies and configuration.
// An Engine has its own socket type scope, so types registered by one
// engine's modules are invisible to another.
type Engine struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	backends *backend.Catalog
	loaders  []config.Loader
	tracer   trace.Tracer
}

// New is the constructor for the engine. It registers the given modules, or
// the default ones when none are given, and the interpreter backend.
func New(outW io.Writer, cfg *Config, modules ...registry.Module) (*Engine, error) {
	if cfg == nil {
		var err error
		if cfg, err = NewConfig(Config{}); err != nil {
			return nil, err
		}
	}
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New(sockettype.New())
	if len(modules) == 0 {
		modules = defaultModules(outW)
	}
	reg.RegisterModules(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "kinds", len(reg.Kinds()))

	if err := reg.Validate(ctx); err != nil {
		return nil, err
	}
	logger.Debug("Registry validation passed.")

	e := &Engine{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		backends: backend.NewCatalog(interp.New()),
		loaders:  []config.Loader{hcl.NewLoader(), yamlgraph.NewLoader()},
	}
	if cfg.Tracing {
		e.tracer = otel.Tracer(tracerName)
	}
	return e, nil
}

// Registry returns the primitive registry.
func (e *Engine) Registry() *registry.Registry { return e.registry }

// Types returns the engine's socket type scope.
func (e *Engine) Types() *sockettype.Registry { return e.registry.Types() }

// Config returns the engine configuration.
func (e *Engine) Config() *Config { return e.config }

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// RegisterBackend makes b available to Compile under its name. It panics on
// duplicate names.
func (e *Engine) RegisterBackend(b backend.Backend) {
	e.backends.Register(b)
	e.logger.Debug("Backend registered.", "backend", b.Name(), "version", b.Version())
}

// Backends returns the registered backend names.
func (e *Engine) Backends() []string { return e.backends.Names() }

// SetTracerProvider records compile spans with tp regardless of the
// Tracing setting.
func (e *Engine) SetTracerProvider(tp trace.TracerProvider) {
	e.tracer = tp.Tracer(tracerName)
}

// NewGraph returns an empty graph in the engine's type scope.
func (e *Engine) NewGraph() *graph.Graph {
	return graph.New(graph.WithTypes(e.Types()))
}

// NewNode builds a primitive node of a registered kind.
func (e *Engine) NewNode(id, kind string, params ...any) (*graph.Node, error) {
	p, err := paramsValue(params)
	if err != nil {
		return nil, err
	}
	return e.registry.NewNode(id, kind, p)
}

// Compile compiles g with the configured backend.
func (e *Engine) Compile(ctx context.Context, g *graph.Graph) (*artifact.Artifact, error) {
	ctx = e.withLogger(ctx)
	be, err := e.backends.Get(e.config.Backend)
	if err != nil {
		return nil, err
	}
	var opts []compiler.Option
	if e.tracer != nil {
		opts = append(opts, compiler.WithTracer(e.tracer))
	}
	return compiler.Compile(ctx, g, be, opts...)
}

// Load reads definitions from paths with every loader and returns the
// merged, validated model.
func (e *Engine) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	ctx = e.withLogger(ctx)
	logger := ctxlog.FromContext(ctx)

	model := &config.Model{}
	for _, l := range e.loaders {
		part, err := l.Load(ctx, paths...)
		if err != nil {
			return nil, err
		}
		if err := model.Merge(part); err != nil {
			return nil, err
		}
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("Definitions loaded and translated into unified model.", "graphs", len(model.Graphs))
	return model, nil
}

// Build materialises the definition named name, or the model's root when
// name is empty.
func (e *Engine) Build(ctx context.Context, m *config.Model, name string) (*graph.Graph, error) {
	ctx = e.withLogger(ctx)
	b := builder.New(m, e.registry)
	if name == "" {
		return b.Root(ctx)
	}
	return b.Build(ctx, name)
}

// CompileFiles loads the configured definition paths, builds the root graph
// and compiles it.
func (e *Engine) CompileFiles(ctx context.Context) (*artifact.Artifact, error) {
	ctx = e.withLogger(ctx)
	if len(e.config.DefinitionPaths) == 0 {
		return nil, ErrNoDefinitions
	}

	m, err := e.Load(ctx, e.config.DefinitionPaths...)
	if err != nil {
		return nil, err
	}
	g, err := e.Build(ctx, m, e.config.Root)
	if err != nil {
		return nil, err
	}
	art, err := e.Compile(ctx, g)
	if err != nil {
		return nil, err
	}
	e.logger.Info("Definitions compiled.", "digest", art.Digest(), "signature", art.Signature().String())
	return art, nil
}

func (e *Engine) withLogger(ctx context.Context) context.Context {
	if ctxlog.Has(ctx) {
		return ctx
	}
	return ctxlog.WithLogger(ctx, e.logger)
}
