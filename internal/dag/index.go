package dag

import (
	"sort"

	"github.com/vk/flowgrid/internal/graph"
)

// vertex tracks the distinct dependency relations of one node. Several edges
// between the same pair of nodes count as a single dependency.
type vertex struct {
	id         string
	deps       map[string]struct{}
	dependents map[string]struct{}
}

type index struct {
	vertices map[string]*vertex
	feedback []graph.Edge
}

func buildIndex(g *graph.Graph) *index {
	idx := &index{vertices: make(map[string]*vertex, g.Len())}
	for _, id := range g.NodeIDs() {
		idx.vertices[id] = &vertex{
			id:         id,
			deps:       make(map[string]struct{}),
			dependents: make(map[string]struct{}),
		}
	}

	for _, e := range g.Edges() {
		if e.Feedback {
			idx.feedback = append(idx.feedback, e)
			continue
		}
		idx.vertices[e.To.Node].deps[e.From.Node] = struct{}{}
		idx.vertices[e.From.Node].dependents[e.To.Node] = struct{}{}
	}
	return idx
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
