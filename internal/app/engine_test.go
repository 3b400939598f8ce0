package app

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/flowgrid/internal/backend"
	"github.com/vk/flowgrid/internal/compiler"
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/interp"
	"github.com/vk/flowgrid/internal/node"
	"github.com/vk/flowgrid/internal/registry"
	"github.com/vk/flowgrid/internal/sockettype"
	"github.com/vk/flowgrid/internal/testutil"
	"github.com/zclconf/go-cty/cty"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// renamed exposes the interpreter under another name.
type renamed struct {
	*interp.Backend
	name string
}

func (r renamed) Name() string { return r.name }

var _ backend.Backend = renamed{}

func sumGraph(t *testing.T, e *Engine) *graph.Graph {
	t.Helper()
	g := e.NewGraph()
	a, err := e.NewNode("a", "const", 4)
	require.NoError(t, err)
	b, err := e.NewNode("b", "const", cty.NumberIntVal(6))
	require.NoError(t, err)
	sum, err := e.NewNode("sum", "add")
	require.NoError(t, err)
	testutil.AddNodes(t, g, a, b, sum)
	testutil.Connect(t, g, "a", 0, "sum", 0)
	testutil.Connect(t, g, "b", 0, "sum", 1)
	require.NoError(t, g.DeclareExternalOutput("sum", 0))
	return g
}

func TestNew_DefaultModules(t *testing.T) {
	e, logs := SetupEngineTest(t, Config{})

	for _, kind := range []string{"const", "add", "format", "env", "env_vars", "print"} {
		_, ok := e.Registry().Lookup(kind)
		assert.True(t, ok, "kind %q", kind)
	}
	assert.Equal(t, []string{"interp"}, e.Backends())
	testutil.AssertLogged(t, logs, "Registry validation passed.")
}

func TestNew_ValidatesModules(t *testing.T) {
	broken := &testutil.SimpleModule{Kinds: []*registry.Kind{{
		Name:     "broken",
		Params:   cty.String,
		ParamsGo: reflect.TypeOf(0),
		Build: func(cty.Value, *sockettype.Registry) (node.Signature, node.Rule, error) {
			return node.Signature{}, nil, nil
		},
	}}}
	_, err := New(&testutil.SafeBuffer{}, nil, broken)
	assert.Error(t, err)
}

func TestEngine_Compile(t *testing.T) {
	e, logs := SetupEngineTest(t, Config{})

	art, err := e.Compile(context.Background(), sumGraph(t, e))
	require.NoError(t, err)
	assert.Equal(t, "interp", art.Backend())

	out, err := art.Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, cty.NumberIntVal(10).RawEquals(out[0]))
	testutil.AssertLogged(t, logs, "Compiled graph.", "backend=interp")
}

func TestEngine_Backends(t *testing.T) {
	e, _ := SetupEngineTest(t, Config{Backend: "alt"})
	g := sumGraph(t, e)

	_, err := e.Compile(context.Background(), g)
	assert.ErrorIs(t, err, backend.ErrUnknownBackend)

	e.RegisterBackend(renamed{Backend: interp.New(), name: "alt"})
	art, err := e.Compile(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, "alt", art.Backend())

	assert.Panics(t, func() { e.RegisterBackend(interp.New()) })
}

func TestEngine_Tracing(t *testing.T) {
	e, _ := SetupEngineTest(t, Config{})
	exporter := tracetest.NewInMemoryExporter()
	e.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)))

	_, err := e.Compile(context.Background(), sumGraph(t, e))
	require.NoError(t, err)

	var names []string
	for _, s := range exporter.GetSpans() {
		names = append(names, s.Name)
	}
	assert.ElementsMatch(t, []string{compiler.SpanCompile, compiler.SpanLower}, names)
}

func TestEngine_NewNodeParams(t *testing.T) {
	e, _ := SetupEngineTest(t, Config{})

	_, err := e.NewNode("x", "const", 1, 2)
	assert.Error(t, err)

	_, err = e.NewNode("x", "const", make(chan int))
	assert.Error(t, err)
}

func TestEngine_CompileFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.hcl"), []byte(`
root = "main"

graph "main" {
  node "seven" {
    kind   = "const"
    params = 7
  }
  node "twice" {
    graph = "double"
  }
  edge {
    from = "seven"
    to   = "twice"
  }
  output "result" {
    node = "twice"
  }
}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "double.yaml"), []byte(`
version: 1
graphs:
  - name: double
    nodes:
      - {id: in, kind: identity, params: number}
      - {id: sum, kind: add}
    edges:
      - {from: in, to: sum}
      - {from: in, to: sum, to_socket: 1}
    inputs:
      - {name: value, node: in}
    outputs:
      - {name: doubled, node: sum}
`), 0o644))

	e, logs := SetupEngineTest(t, Config{DefinitionPaths: []string{dir}})
	art, err := e.CompileFiles(context.Background())
	require.NoError(t, err)

	out, err := art.Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, cty.NumberIntVal(14).RawEquals(out[0]))
	testutil.AssertLogged(t, logs, "Definitions compiled.", "digest="+art.Digest())
}

func TestEngine_CompileFiles_NoPaths(t *testing.T) {
	e, _ := SetupEngineTest(t, Config{})
	_, err := e.CompileFiles(context.Background())
	assert.ErrorIs(t, err, ErrNoDefinitions)
}
