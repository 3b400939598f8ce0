package node

import (
	"fmt"
	"strings"

	"github.com/vk/flowgrid/internal/sockettype"
)

// Direction tells whether a socket consumes or produces values.
type Direction int

const (
	// Input sockets receive at most one incoming edge.
	Input Direction = iota
	// Output sockets may feed any number of edges.
	Output
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Socket is a typed connection point on a node.
type Socket struct {
	Direction Direction
	Index     int
	Type      sockettype.Type
}

func (s Socket) String() string {
	return fmt.Sprintf("%s[%d]:%s", s.Direction, s.Index, s.Type)
}

// Signature is the ordered list of input and output types of a node or of a
// compiled artifact.
type Signature struct {
	Inputs  []sockettype.Type
	Outputs []sockettype.Type
}

// Clone returns a deep copy of s.
func (s Signature) Clone() Signature {
	return Signature{
		Inputs:  append([]sockettype.Type(nil), s.Inputs...),
		Outputs: append([]sockettype.Type(nil), s.Outputs...),
	}
}

// Equal reports whether both signatures have the same types in the same
// positions.
func (s Signature) Equal(other Signature) bool {
	return typesEqual(s.Inputs, other.Inputs) && typesEqual(s.Outputs, other.Outputs)
}

// Sockets expands the signature into sockets of the given direction.
func (s Signature) Sockets(dir Direction) []Socket {
	types := s.Inputs
	if dir == Output {
		types = s.Outputs
	}
	out := make([]Socket, len(types))
	for i, t := range types {
		out[i] = Socket{Direction: dir, Index: i, Type: t}
	}
	return out
}

func (s Signature) String() string {
	return fmt.Sprintf("(%s) -> (%s)", joinTypes(s.Inputs), joinTypes(s.Outputs))
}

func typesEqual(a, b []sockettype.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}

func joinTypes(types []sockettype.Type) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
