package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateID          = errors.New("duplicate node id")
	ErrUnknownNode          = errors.New("unknown node")
	ErrUnknownSocket        = errors.New("unknown socket")
	ErrUnknownEdge          = errors.New("unknown edge")
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrFanInViolation       = errors.New("input already has a source")
	ErrSocketAlreadyExposed = errors.New("socket already exposed")
	ErrCyclicGraph          = errors.New("cyclic graph")
	ErrInvalidNode          = errors.New("invalid node")
)

// CycleError reports a dependency cycle. Nodes holds every offending node ID
// in ascending order; Path is one concrete cycle, starting and ending at the
// same node.
type CycleError struct {
	Nodes []string
	Path  []string
}

func (e *CycleError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("%s: %s", ErrCyclicGraph, strings.Join(e.Path, " -> "))
	}
	return fmt.Sprintf("%s: nodes %s", ErrCyclicGraph, strings.Join(e.Nodes, ", "))
}

func (e *CycleError) Unwrap() error { return ErrCyclicGraph }
