package dag

import (
	"container/heap"
	"sort"

	"github.com/vk/flowgrid/internal/graph"
)

// Resolve computes the evaluation plan of g.
func Resolve(g *graph.Graph) (*Plan, error) {
	idx := buildIndex(g)

	inDegree := make(map[string]int, len(idx.vertices))
	ready := &readyQueue{}
	for id, v := range idx.vertices {
		inDegree[id] = len(v.deps)
		if inDegree[id] == 0 {
			*ready = append(*ready, id)
		}
	}
	heap.Init(ready)

	order := make([]string, 0, len(idx.vertices))
	for ready.Len() > 0 {
		id := heap.Pop(ready).(string)
		order = append(order, id)
		for dependent := range idx.vertices[id].dependents {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				heap.Push(ready, dependent)
			}
		}
	}

	if len(order) != len(idx.vertices) {
		var stuck []string
		for id, d := range inDegree {
			if d > 0 {
				stuck = append(stuck, id)
			}
		}
		sort.Strings(stuck)
		return nil, &graph.CycleError{Nodes: stuck, Path: witness(idx, stuck)}
	}

	return newPlan(idx, order), nil
}

// witness walks predecessors among the stuck nodes, always taking the
// smallest, until a node repeats. Every stuck node has a stuck predecessor,
// so the walk always closes a cycle.
func witness(idx *index, stuck []string) []string {
	inStuck := make(map[string]struct{}, len(stuck))
	for _, id := range stuck {
		inStuck[id] = struct{}{}
	}

	seenAt := make(map[string]int)
	var walk []string
	cur := stuck[0]
	for {
		if at, ok := seenAt[cur]; ok {
			walk = walk[at:]
			break
		}
		seenAt[cur] = len(walk)
		walk = append(walk, cur)
		for _, dep := range sortedKeys(idx.vertices[cur].deps) {
			if _, ok := inStuck[dep]; ok {
				cur = dep
				break
			}
		}
	}

	// walk follows dependencies backwards; flip it into data-flow direction
	// and start at the smallest member.
	cycle := make([]string, len(walk))
	for i, id := range walk {
		cycle[len(walk)-1-i] = id
	}
	start := 0
	for i, id := range cycle {
		if id < cycle[start] {
			start = i
		}
	}
	path := append(cycle[start:len(cycle):len(cycle)], cycle[:start]...)
	return append(path, path[0])
}
