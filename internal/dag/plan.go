package dag

import (
	"fmt"

	"github.com/vk/flowgrid/internal/graph"
)

// Plan is the evaluation order of a graph. It is never mutated after
// Resolve returns it.
type Plan struct {
	// Order lists every node ID such that each node comes after all nodes
	// it depends on through non-feedback edges.
	Order []string
	// Feedback lists the feedback edges ordered by ID.
	Feedback []graph.Edge

	position map[string]int
	idx      *index
}

func newPlan(idx *index, order []string) *Plan {
	p := &Plan{
		Order:    order,
		Feedback: idx.feedback,
		position: make(map[string]int, len(order)),
		idx:      idx,
	}
	for i, id := range order {
		p.position[id] = i
	}
	return p
}

// Position returns the index of id in Order.
func (p *Plan) Position(id string) (int, bool) {
	i, ok := p.position[id]
	return i, ok
}

// Dependencies returns the nodes id reads from through non-feedback edges,
// in ascending order.
func (p *Plan) Dependencies(id string) ([]string, error) {
	v, ok := p.idx.vertices[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", graph.ErrUnknownNode, id)
	}
	return sortedKeys(v.deps), nil
}

// Dependents returns the nodes reading from id through non-feedback edges,
// in ascending order.
func (p *Plan) Dependents(id string) ([]string, error) {
	v, ok := p.idx.vertices[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", graph.ErrUnknownNode, id)
	}
	return sortedKeys(v.dependents), nil
}

// PushOrder returns id and every node downstream of it, in plan order. It is
// the set of nodes to re-evaluate after id produced new values.
func (p *Plan) PushOrder(id string) ([]string, error) {
	return p.restrict(id, func(v *vertex) map[string]struct{} { return v.dependents })
}

// PullOrder returns id and every node upstream of it, in plan order. It is
// the set of nodes needed to compute id.
func (p *Plan) PullOrder(id string) ([]string, error) {
	return p.restrict(id, func(v *vertex) map[string]struct{} { return v.deps })
}

func (p *Plan) restrict(id string, next func(*vertex) map[string]struct{}) ([]string, error) {
	if _, ok := p.idx.vertices[id]; !ok {
		return nil, fmt.Errorf("%w: %q", graph.ErrUnknownNode, id)
	}

	reached := map[string]bool{id: true}
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for n := range next(p.idx.vertices[cur]) {
			if !reached[n] {
				reached[n] = true
				stack = append(stack, n)
			}
		}
	}

	out := make([]string, 0, len(reached))
	for _, n := range p.Order {
		if reached[n] {
			out = append(out, n)
		}
	}
	return out, nil
}
