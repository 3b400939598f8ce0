package artifact_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/flowgrid/internal/artifact"
	"github.com/vk/flowgrid/internal/compiler"
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/interp"
	"github.com/vk/flowgrid/internal/ir"
	"github.com/vk/flowgrid/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

// counter adds its external input to its own previous output.
func counter(t *testing.T) *artifact.Artifact {
	t.Helper()
	g := graph.New()
	testutil.AddNodes(t, g, testutil.Add(t, "acc", 2))
	require.NoError(t, g.DeclareExternalInput("acc", 0))
	testutil.Feedback(t, g, "acc", 0, "acc", 1)
	require.NoError(t, g.DeclareExternalOutput("acc", 0))

	art, err := compiler.Compile(context.Background(), g, interp.New())
	require.NoError(t, err)
	return art
}

func TestArtifact_Accessors(t *testing.T) {
	art := counter(t)

	sig := art.Signature()
	assert.Len(t, sig.Inputs, 1)
	assert.Len(t, sig.Outputs, 1)
	assert.Len(t, art.Digest(), 64)
	assert.NotEmpty(t, art.Code())
	assert.Equal(t, ir.Digest(art.Code()), art.Digest(), "the interpreter's code is the IR encoding")
	assert.Contains(t, art.String(), "interp")
}

func TestSession_FeedbackState(t *testing.T) {
	art := counter(t)
	s, err := art.NewSession(nil)
	require.NoError(t, err)

	for i, in := range []int64{5, 7, 1} {
		_, err := s.Invoke(context.Background(), []cty.Value{cty.NumberIntVal(in)})
		require.NoError(t, err, "pass %d", i)
	}
	fb := s.Feedback()
	assert.True(t, fb[ir.FeedbackKey{Node: "acc"}].RawEquals(cty.NumberIntVal(13)))
	assert.Equal(t, 3, s.Passes())

	// Failed passes leave state untouched.
	_, err = s.Invoke(context.Background(), nil)
	require.ErrorIs(t, err, artifact.ErrArityMismatch)
	assert.Equal(t, 3, s.Passes())
}

func TestArtifact_ConcurrentSessionsAreIsolated(t *testing.T) {
	art := counter(t)

	var wg sync.WaitGroup
	results := make([]cty.Value, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := art.NewSession(nil)
			if err != nil {
				return
			}
			var out []cty.Value
			for pass := 0; pass < 10; pass++ {
				out, err = s.Invoke(context.Background(), []cty.Value{cty.NumberIntVal(int64(i))})
				if err != nil {
					return
				}
			}
			results[i] = out[0]
		}(i)
	}
	wg.Wait()

	for i, v := range results {
		require.NotEqual(t, cty.NilVal, v, "session %d failed", i)
		assert.True(t, v.RawEquals(cty.NumberIntVal(int64(i*10))), "session %d got %#v", i, v)
	}
}

func TestArtifact_StartGivesIndependentRunners(t *testing.T) {
	art := counter(t)
	a := art.Start()
	b := art.Start()

	_, err := a.Run(context.Background(), []cty.Value{cty.NumberIntVal(3)})
	require.NoError(t, err)
	out, err := a.Run(context.Background(), []cty.Value{cty.NumberIntVal(3)})
	require.NoError(t, err)
	assert.True(t, out[0].RawEquals(cty.NumberIntVal(6)))

	out, err = b.Run(context.Background(), []cty.Value{cty.NumberIntVal(3)})
	require.NoError(t, err)
	assert.True(t, out[0].RawEquals(cty.NumberIntVal(3)))
}

func TestArtifact_InvokeIsStateless(t *testing.T) {
	art := counter(t)
	for i := 0; i < 3; i++ {
		out, err := art.Invoke(context.Background(), []cty.Value{cty.NumberIntVal(4)})
		require.NoError(t, err)
		assert.True(t, out[0].RawEquals(cty.NumberIntVal(4)))
	}
}

func TestArtifact_CancelledContext(t *testing.T) {
	art := counter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := art.Invoke(ctx, []cty.Value{cty.NumberIntVal(1)})
	require.ErrorIs(t, err, artifact.ErrRuntime)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSession_RejectsNonConcreteValues(t *testing.T) {
	art := counter(t)
	key := ir.FeedbackKey{Node: "acc"}

	testCases := []struct {
		name  string
		value cty.Value
	}{
		{name: "unknown", value: cty.UnknownVal(cty.Number)},
		{name: "dynamic", value: cty.DynamicVal},
		{name: "marked", value: cty.NumberIntVal(1).Mark("secret")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := art.Invoke(context.Background(), []cty.Value{tc.value})
			assert.ErrorIs(t, err, graph.ErrTypeMismatch)

			_, err = art.NewSession(map[ir.FeedbackKey]cty.Value{key: tc.value})
			assert.ErrorIs(t, err, graph.ErrTypeMismatch)
		})
	}
}

func TestSession_RulePanicIsRuntimeError(t *testing.T) {
	g := graph.New()
	testutil.AddNodes(t, g, testutil.Primitive(t, "bad", "bad", testutil.Numbers(1), testutil.Numbers(1),
		func([]cty.Value) ([]cty.Value, error) {
			panic("bad rule")
		}))
	require.NoError(t, g.DeclareExternalInput("bad", 0))
	require.NoError(t, g.DeclareExternalOutput("bad", 0))
	art, err := compiler.Compile(context.Background(), g, interp.New())
	require.NoError(t, err)

	_, err = art.Invoke(context.Background(), []cty.Value{cty.NumberIntVal(1)})
	require.ErrorIs(t, err, artifact.ErrRuntime)
	assert.ErrorIs(t, err, interp.ErrRulePanic)
	var ruleErr *interp.RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, "bad", ruleErr.Node)
}

func TestSession_FailedPassKeepsNestedState(t *testing.T) {
	inner := counter(t)
	wrapped, err := inner.AsNode("inner")
	require.NoError(t, err)

	var calls atomic.Int32
	flaky := testutil.CountingRule(&calls, func(inputs []cty.Value) ([]cty.Value, error) {
		if calls.Load() == 2 {
			return testutil.FailRule(inputs)
		}
		return testutil.PassRule(inputs)
	})

	g := graph.New()
	testutil.AddNodes(t, g, wrapped,
		testutil.Primitive(t, "gate", "gate", testutil.Numbers(1), testutil.Numbers(1), flaky),
		testutil.Add(t, "outer", 2))
	testutil.Connect(t, g, "inner", 0, "gate", 0)
	testutil.Connect(t, g, "gate", 0, "outer", 0)
	testutil.Feedback(t, g, "outer", 0, "outer", 1)
	require.NoError(t, g.DeclareExternalInput("inner", 0))
	require.NoError(t, g.DeclareExternalOutput("outer", 0))
	art, err := compiler.Compile(context.Background(), g, interp.New())
	require.NoError(t, err)

	s, err := art.NewSession(nil)
	require.NoError(t, err)
	in := []cty.Value{cty.NumberIntVal(3)}

	out, err := s.Invoke(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, out[0].RawEquals(cty.NumberIntVal(3)))

	_, err = s.Invoke(context.Background(), in)
	require.ErrorIs(t, err, testutil.ErrBoom)
	assert.Equal(t, 1, s.Passes())
	assert.True(t, s.Feedback()[ir.FeedbackKey{Node: "outer"}].RawEquals(cty.NumberIntVal(3)))

	// The embedded counter completed its second pass before the gate failed.
	out, err = s.Invoke(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, out[0].RawEquals(cty.NumberIntVal(12)))
	assert.Equal(t, int32(3), calls.Load())
}
