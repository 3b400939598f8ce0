package nodeid

// Segment represents a single component of an address path, e.g., `name[index]`.
type Segment struct {
	Name  string
	Index int // -1 indicates no index is present.
}

// NewSegment creates a new path segment without an index.
func NewSegment(name string) Segment {
	return Segment{Name: name, Index: -1}
}

// HasIndex returns true if the path segment has an explicit index.
func (s Segment) HasIndex() bool {
	return s.Index != -1
}

// Address is the structured representation of a qualified node address.
// The last segment names the node; the preceding segments name the
// sub-graph nodes it was inlined through.
type Address struct {
	Path []Segment
}
