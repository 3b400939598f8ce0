package builder

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/vk/flowgrid/internal/config"
	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/registry"
)

// Builder turns definitions of one model into graphs. Each definition is
// built at most once; embedding the same definition twice shares the
// built graph.
type Builder struct {
	model    *config.Model
	registry *registry.Registry
	built    map[string]*graph.Graph
	stack    []string
}

// New creates a builder for m resolving kinds in r. m should have passed
// Validate.
func New(m *config.Model, r *registry.Registry) *Builder {
	return &Builder{
		model:    m,
		registry: r,
		built:    make(map[string]*graph.Graph),
	}
}

// Build materialises the definition named name.
func (b *Builder) Build(ctx context.Context, name string) (*graph.Graph, error) {
	if g, ok := b.built[name]; ok {
		return g, nil
	}
	for i, open := range b.stack {
		if open == name {
			return nil, definitionCycle(append(append([]string(nil), b.stack[i:]...), name))
		}
	}
	def, ok := b.model.Graph(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownGraph, name)
	}

	b.stack = append(b.stack, name)
	defer func() { b.stack = b.stack[:len(b.stack)-1] }()

	logger := ctxlog.FromContext(ctx).With("graph", name)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Build: Starting graph construction.")

	g := graph.New(graph.WithTypes(b.registry.Types()))
	if err := b.createNodes(ctx, def, g); err != nil {
		return nil, wrap(def, err)
	}
	logger.Debug("Build: Node creation complete.", "node_count", g.Len())

	if err := linkNodes(def, g); err != nil {
		return nil, wrap(def, err)
	}
	logger.Debug("Build: Node linking complete.", "edge_count", len(def.Edges))

	if err := exposePorts(def, g); err != nil {
		return nil, wrap(def, err)
	}
	logger.Debug("Build: Graph construction successful.", "signature", g.Signature().String())

	b.built[name] = g
	return g, nil
}

// Root builds the model's root definition.
func (b *Builder) Root(ctx context.Context) (*graph.Graph, error) {
	def, err := b.model.RootGraph()
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, def.Name)
}

// wrap locates err in def unless a nested definition already did.
func wrap(def *config.Graph, err error) error {
	var located *config.Error
	if errors.As(err, &located) {
		return err
	}
	return &config.Error{Graph: def.Name, Source: def.Source, Err: err}
}

func definitionCycle(path []string) *graph.CycleError {
	seen := make(map[string]struct{}, len(path))
	nodes := make([]string, 0, len(path))
	for _, name := range path {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			nodes = append(nodes, name)
		}
	}
	sort.Strings(nodes)
	return &graph.CycleError{Nodes: nodes, Path: path}
}
