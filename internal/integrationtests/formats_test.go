package integration_tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const greetingHCL = `
graph "greeting" {
  node "name" {
    kind   = "const"
    params = "world"
  }
  node "msg" {
    kind = "format"
    params = {
      format = "hello, %s"
      args   = 1
    }
  }
  edge {
    from = "name"
    to   = "msg"
  }
  output "text" {
    node = "msg"
  }
}
`

const greetingYAML = `
version: 1
graphs:
  - name: greeting
    nodes:
      - {id: name, kind: const, params: world}
      - id: msg
        kind: format
        params:
          format: "hello, %s"
          args: 1
    edges:
      - {from: name, to: msg}
    outputs:
      - {name: text, node: msg}
`

func TestFormats_SameDefinitionSameDigest(t *testing.T) {
	t.Parallel()

	fromHCL, _, err := compileFiles(t, map[string]string{"greeting.hcl": greetingHCL})
	require.NoError(t, err)
	fromYAML, _, err := compileFiles(t, map[string]string{"greeting.yaml": greetingYAML})
	require.NoError(t, err)

	assert.Equal(t, fromHCL.Digest(), fromYAML.Digest())
	assert.Equal(t, fromHCL.Code(), fromYAML.Code())

	out, err := fromYAML.Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "hello, world", out[0].AsString())
}

func TestFormats_RecompileIsStable(t *testing.T) {
	t.Parallel()

	files := map[string]string{"greeting.hcl": greetingHCL}
	first, _, err := compileFiles(t, files)
	require.NoError(t, err)
	second, _, err := compileFiles(t, files)
	require.NoError(t, err)

	assert.Equal(t, first.Digest(), second.Digest())
	assert.Equal(t, first.Program().String(), second.Program().String())
}

func TestFormats_MixedFiles(t *testing.T) {
	t.Parallel()

	art, _, err := compileFiles(t, map[string]string{
		"lib/greeting.yaml": greetingYAML,
		"main.hcl": `
root = "main"

graph "main" {
  node "g" {
    graph = "greeting"
  }
  node "shout" {
    kind = "concat"
  }
  node "bang" {
    kind   = "const"
    params = "!"
  }
  edge {
    from = "g"
    to   = "shout"
  }
  edge {
    from      = "bang"
    to        = "shout"
    to_socket = 1
  }
  output "text" {
    node = "shout"
  }
}
`,
	})
	require.NoError(t, err)

	out, err := art.Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, cty.StringVal("hello, world!").RawEquals(out[0]))
}
