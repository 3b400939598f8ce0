package nodeid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// segmentRegex is used to parse a single segment of a path, e.g., `name` or `name[1]`.
var segmentRegex = regexp.MustCompile(`^([a-zA-Z0-9_-]+)(?:\[(\d+)\])?$`)

// isValidSegmentName checks for undesirable but technically valid names.
func isValidSegmentName(name string) bool {
	return name != "-" && name != "_"
}

// ParseSegment parses a single path segment.
func ParseSegment(raw string) (Segment, error) {
	if raw == "" {
		return Segment{}, fmt.Errorf("identifier path contains empty segment")
	}

	matches := segmentRegex.FindStringSubmatch(raw)
	if matches == nil {
		return Segment{}, fmt.Errorf("invalid path segment format: %q", raw)
	}

	name := matches[1]
	if !isValidSegmentName(name) {
		return Segment{}, fmt.Errorf("invalid segment name: %q", name)
	}

	segment := NewSegment(name)
	if matches[2] != "" {
		index, err := strconv.Atoi(matches[2])
		if err != nil {
			return Segment{}, fmt.Errorf("invalid segment index in %q: %w", raw, err)
		}
		segment.Index = index
	}
	return segment, nil
}

// ParseID validates a node identifier. Identifiers are exactly one segment;
// dots are reserved for qualified addresses.
func ParseID(raw string) (Segment, error) {
	if raw == "" {
		return Segment{}, fmt.Errorf("identifier cannot be empty")
	}
	if strings.Contains(raw, ".") {
		return Segment{}, fmt.Errorf("identifier %q must not contain '.'", raw)
	}
	return ParseSegment(raw)
}

// Parse creates a new Address struct by parsing its canonical string representation.
func Parse(rawID string) (*Address, error) {
	if rawID == "" {
		return nil, fmt.Errorf("identifier cannot be empty")
	}

	addr := &Address{}
	for _, segmentStr := range strings.Split(rawID, ".") {
		segment, err := ParseSegment(segmentStr)
		if err != nil {
			return nil, err
		}
		addr.Path = append(addr.Path, segment)
	}
	return addr, nil
}
