package builder

import (
	"context"
	"fmt"

	"github.com/vk/flowgrid/internal/config"
	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/graph"
)

func (b *Builder) createNodes(ctx context.Context, def *config.Graph, g *graph.Graph) error {
	logger := ctxlog.FromContext(ctx)
	for _, n := range def.Nodes {
		var (
			gn  *graph.Node
			err error
		)
		if n.Graph != "" {
			logger.Debug("Build: Embedding graph definition.", "node", n.ID, "definition", n.Graph)
			var sub *graph.Graph
			sub, err = b.Build(ctx, n.Graph)
			if err != nil {
				return err
			}
			gn, err = graph.NewGraphNode(n.ID, sub)
		} else {
			logger.Debug("Build: Creating primitive node.", "node", n.ID, "kind", n.Kind)
			gn, err = b.registry.NewNode(n.ID, n.Kind, n.Params)
		}
		if err != nil {
			return err
		}
		if _, err := g.AddNode(gn); err != nil {
			return err
		}
	}
	return nil
}

func linkNodes(def *config.Graph, g *graph.Graph) error {
	for i, e := range def.Edges {
		_, err := g.AddEdge(graph.EdgeSpec{
			From:     graph.Endpoint{Node: e.From, Socket: e.FromSocket},
			To:       graph.Endpoint{Node: e.To, Socket: e.ToSocket},
			Feedback: e.Feedback,
		})
		if err != nil {
			return fmt.Errorf("edge %d (%s[%d] -> %s[%d]): %w", i, e.From, e.FromSocket, e.To, e.ToSocket, err)
		}
	}
	return nil
}

func exposePorts(def *config.Graph, g *graph.Graph) error {
	for _, p := range def.Inputs {
		if err := g.DeclareExternalInput(p.Node, p.Socket, graph.Named(p.Name)); err != nil {
			return fmt.Errorf("input %q: %w", p.Name, err)
		}
	}
	for _, p := range def.Outputs {
		if err := g.DeclareExternalOutput(p.Node, p.Socket, graph.Named(p.Name)); err != nil {
			return fmt.Errorf("output %q: %w", p.Name, err)
		}
	}
	return nil
}
