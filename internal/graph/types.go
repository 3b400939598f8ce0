package graph

import "fmt"

// EdgeID identifies an edge within its graph. IDs are allocated in
// increasing order starting at 1 and never reused.
type EdgeID uint64

// Endpoint references a socket of a node by index.
type Endpoint struct {
	Node   string
	Socket int
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s[%d]", e.Node, e.Socket)
}

// EdgeSpec describes an edge to add.
type EdgeSpec struct {
	// From is an output socket.
	From Endpoint
	// To is an input socket.
	To Endpoint
	// Feedback edges carry the value produced on the previous pass and are
	// excluded from evaluation ordering.
	Feedback bool
}

// Edge is a connection from an output socket to an input socket.
type Edge struct {
	ID       EdgeID
	From     Endpoint
	To       Endpoint
	Feedback bool
}

func (e Edge) String() string {
	arrow := "->"
	if e.Feedback {
		arrow = "~>"
	}
	return fmt.Sprintf("#%d %s %s %s", e.ID, e.From, arrow, e.To)
}

// External is a socket of an inner node exposed on the graph boundary.
type External struct {
	Endpoint
	// Name is optional and only used by definition files and diagnostics.
	Name string
}

// ExternalOption configures an external socket declaration.
type ExternalOption func(*External)

// Named sets the external socket name.
func Named(name string) ExternalOption {
	return func(e *External) {
		e.Name = name
	}
}

// Option configures a Graph.
type Option func(*Graph)
