package config

import "github.com/zclconf/go-cty/cty"

// Model is the unified representation of every loaded definition file.
type Model struct {
	// Root names the graph compiled by default. It may be empty when only
	// one graph is defined.
	Root string
	// Graphs keep the order in which they were read.
	Graphs []*Graph `validate:"dive"`
}

// Graph is one named graph definition.
type Graph struct {
	Name    string  `validate:"required"`
	Nodes   []*Node `validate:"dive"`
	Edges   []*Edge `validate:"dive"`
	Inputs  []*Port `validate:"dive"`
	Outputs []*Port `validate:"dive"`
	// Source is the file the graph was read from, for diagnostics.
	Source string
}

// Node is a node definition. Exactly one of Kind and Graph is set: Kind
// names a registered primitive kind, Graph embeds another definition.
type Node struct {
	ID    string `validate:"required,excludesall=."`
	Kind  string `validate:"required_without=Graph,excluded_with=Graph"`
	Graph string `validate:"required_without=Kind"`
	// Params is cty.NilVal when the definition has none.
	Params cty.Value `validate:"-"`
}

// Edge connects an output socket to an input socket.
type Edge struct {
	From       string `validate:"required"`
	FromSocket int    `validate:"min=0"`
	To         string `validate:"required"`
	ToSocket   int    `validate:"min=0"`
	Feedback   bool
}

// Port exposes a node socket as a graph input or output.
type Port struct {
	Name   string
	Node   string `validate:"required"`
	Socket int    `validate:"min=0"`
}

// Graph returns the graph named name.
func (m *Model) Graph(name string) (*Graph, bool) {
	for _, g := range m.Graphs {
		if g.Name == name {
			return g, true
		}
	}
	return nil, false
}

// RootGraph returns the graph named by Root, or the only graph when Root
// is empty.
func (m *Model) RootGraph() (*Graph, error) {
	if m.Root != "" {
		g, ok := m.Graph(m.Root)
		if !ok {
			return nil, &Error{Graph: m.Root, Err: ErrUnknownGraph}
		}
		return g, nil
	}
	if len(m.Graphs) != 1 {
		return nil, ErrNoRoot
	}
	return m.Graphs[0], nil
}

// Merge appends other's graphs to m. A root set in both must agree.
func (m *Model) Merge(other *Model) error {
	if other.Root != "" {
		if m.Root != "" && m.Root != other.Root {
			return &Error{Graph: other.Root, Err: ErrConflictingRoot}
		}
		m.Root = other.Root
	}
	m.Graphs = append(m.Graphs, other.Graphs...)
	return nil
}
