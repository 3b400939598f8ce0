package nodeid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress_String(t *testing.T) {
	testCases := []struct {
		name        string
		addr        *Address
		expectedStr string
	}{
		{
			name:        "simple path",
			addr:        &Address{Path: []Segment{NewSegment("outer"), NewSegment("sum")}},
			expectedStr: "outer.sum",
		},
		{
			name:        "path with indices",
			addr:        &Address{Path: []Segment{NewSegment("filter"), Segment{Name: "stage", Index: 1}, NewSegment("sum")}},
			expectedStr: "filter.stage[1].sum",
		},
		{
			name:        "nil address",
			addr:        nil,
			expectedStr: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedStr, tc.addr.String())
		})
	}
}

func TestAddress_RoundTrip(t *testing.T) {
	for _, id := range []string{"a.b.c", "filter.stage[1].sum", "const-5"} {
		t.Run(id, func(t *testing.T) {
			addr, err := Parse(id)
			require.NoError(t, err)
			assert.Equal(t, id, addr.String())

			again, err := Parse(addr.String())
			require.NoError(t, err)
			assert.True(t, addr.Equal(again))
		})
	}
}

func TestAddress_ChildDoesNotAlias(t *testing.T) {
	root := (*Address)(nil).Child(NewSegment("outer"))
	a := root.Child(NewSegment("a"))
	b := root.Child(NewSegment("b"))

	assert.Equal(t, "outer", root.String())
	assert.Equal(t, "outer.a", a.String())
	assert.Equal(t, "outer.b", b.String())
	assert.Equal(t, 2, a.Depth())
}

func TestAddress_Qualify(t *testing.T) {
	assert.Equal(t, "sum", (*Address)(nil).Qualify("sum"))

	addr, err := Parse("outer.inner")
	require.NoError(t, err)
	assert.Equal(t, "outer.inner.sum", addr.Qualify("sum"))
}

func TestAddress_Equal(t *testing.T) {
	addr1, _ := Parse("a.b[0]")
	addr2, _ := Parse("a.b[0]")
	addr3, _ := Parse("a.b[1]")
	addr4, _ := Parse("a.c[0]")

	assert.True(t, addr1.Equal(addr2))
	assert.False(t, addr1.Equal(addr3))
	assert.False(t, addr1.Equal(addr4))
	assert.False(t, addr1.Equal(nil))
	assert.False(t, (*Address)(nil).Equal(addr1))
	assert.True(t, (*Address)(nil).Equal(nil))
}
