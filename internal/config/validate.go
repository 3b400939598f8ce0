package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidModel wraps field-level validation failures.
	ErrInvalidModel = errors.New("invalid definition")
	// ErrDuplicateGraph is returned when two definitions share a name.
	ErrDuplicateGraph = errors.New("duplicate graph definition")
	// ErrDuplicateNode is returned when a graph defines a node id twice.
	ErrDuplicateNode = errors.New("duplicate node definition")
	// ErrUnknownGraph is returned for references to undefined graphs.
	ErrUnknownGraph = errors.New("unknown graph")
	// ErrNoRoot is returned when no root graph is named and more than one
	// graph is defined.
	ErrNoRoot = errors.New("no root graph: set root or define exactly one graph")
	// ErrConflictingRoot is returned when files name different roots.
	ErrConflictingRoot = errors.New("conflicting root graphs")
)

// Error locates a definition problem.
type Error struct {
	Graph  string
	Source string
	Err    error
}

func (e *Error) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s: graph %q: %v", e.Source, e.Graph, e.Err)
	}
	return fmt.Sprintf("graph %q: %v", e.Graph, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints, name uniqueness and graph references.
// Cyclic graph references are left to the builder, which reports them as
// graph.CycleError.
func (m *Model) Validate() error {
	names := make(map[string]*Graph, len(m.Graphs))
	for _, g := range m.Graphs {
		if err := validate.Struct(g); err != nil {
			return &Error{Graph: g.Name, Source: g.Source, Err: fmt.Errorf("%w: %w", ErrInvalidModel, err)}
		}
		if prev, dup := names[g.Name]; dup {
			return &Error{Graph: g.Name, Source: g.Source, Err: fmt.Errorf("%w: also defined in %s", ErrDuplicateGraph, prev.Source)}
		}
		names[g.Name] = g
	}

	for _, g := range m.Graphs {
		ids := make(map[string]struct{}, len(g.Nodes))
		for _, n := range g.Nodes {
			if _, dup := ids[n.ID]; dup {
				return &Error{Graph: g.Name, Source: g.Source, Err: fmt.Errorf("%w: %q", ErrDuplicateNode, n.ID)}
			}
			ids[n.ID] = struct{}{}
			if n.Graph != "" {
				if _, ok := names[n.Graph]; !ok {
					return &Error{Graph: g.Name, Source: g.Source, Err: fmt.Errorf("%w: %q (node %q)", ErrUnknownGraph, n.Graph, n.ID)}
				}
			}
		}
	}

	if m.Root != "" {
		if _, ok := names[m.Root]; !ok {
			return &Error{Graph: m.Root, Err: ErrUnknownGraph}
		}
	}
	return nil
}
