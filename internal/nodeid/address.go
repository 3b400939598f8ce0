package nodeid

import (
	"strconv"
	"strings"
)

// String renders the segment as `name` or `name[index]`.
func (s Segment) String() string {
	if !s.HasIndex() {
		return s.Name
	}
	return s.Name + "[" + strconv.Itoa(s.Index) + "]"
}

// String serializes the Address into its canonical path string representation.
func (a *Address) String() string {
	if a == nil {
		return ""
	}

	var sb strings.Builder
	for i, segment := range a.Path {
		if i > 0 {
			sb.WriteRune('.')
		}
		sb.WriteString(segment.String())
	}
	return sb.String()
}

// Equal checks for deep equality between two Address pointers.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	if len(a.Path) != len(other.Path) {
		return false
	}
	for i := range a.Path {
		if a.Path[i] != other.Path[i] {
			return false
		}
	}
	return true
}

// Child returns a new address with seg appended. The receiver is not
// modified; a nil receiver yields a single-segment address.
func (a *Address) Child(seg Segment) *Address {
	var path []Segment
	if a != nil {
		path = make([]Segment, len(a.Path), len(a.Path)+1)
		copy(path, a.Path)
	}
	return &Address{Path: append(path, seg)}
}

// Qualify appends the node identifier id to the address. id must already
// be a valid identifier (see ParseID).
func (a *Address) Qualify(id string) string {
	if a == nil || len(a.Path) == 0 {
		return id
	}
	return a.String() + "." + id
}

// Depth returns the number of segments in the address.
func (a *Address) Depth() int {
	if a == nil {
		return 0
	}
	return len(a.Path)
}
