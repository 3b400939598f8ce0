package nodeid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name         string
		rawID        string
		expectErr    bool
		expectedAddr *Address
	}{
		{
			name:         "simple path",
			rawID:        "a.b.c",
			expectedAddr: &Address{Path: []Segment{NewSegment("a"), NewSegment("b"), NewSegment("c")}},
		},
		{
			name:         "multi-level path with index",
			rawID:        "graph.stage[0].sum[15]",
			expectedAddr: &Address{Path: []Segment{NewSegment("graph"), Segment{Name: "stage", Index: 0}, Segment{Name: "sum", Index: 15}}},
		},
		{name: "error - empty path segment", rawID: "a..b", expectErr: true},
		{name: "error - invalid segment format", rawID: "a.b[x]", expectErr: true},
		{name: "error - empty string", rawID: "", expectErr: true},
		{name: "error - invalid segment name hyphen", rawID: "a.-.c", expectErr: true},
		{name: "error - just dot", rawID: ".", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			addr, err := Parse(tc.rawID)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.expectedAddr.Equal(addr), "parsed address does not match expected address")
		})
	}
}

func TestParseID(t *testing.T) {
	testCases := []struct {
		raw       string
		expectErr bool
		expected  Segment
	}{
		{raw: "add", expected: NewSegment("add")},
		{raw: "stage[3]", expected: Segment{Name: "stage", Index: 3}},
		{raw: "const_5", expected: NewSegment("const_5")},
		{raw: "outer.add", expectErr: true},
		{raw: "", expectErr: true},
		{raw: "has space", expectErr: true},
		{raw: "_", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			seg, err := ParseID(tc.raw)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, seg)
			assert.Equal(t, tc.raw, seg.String())
		})
	}
}
