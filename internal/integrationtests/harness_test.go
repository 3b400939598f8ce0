package integration_tests

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/flowgrid/internal/app"
	"github.com/vk/flowgrid/internal/artifact"
	"github.com/vk/flowgrid/internal/testutil"
)

// writeFiles creates the given files, keyed by relative path, in a fresh
// temporary directory and returns it.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// compileFiles compiles the definitions in files with a default engine.
func compileFiles(t *testing.T, files map[string]string) (*artifact.Artifact, *testutil.SafeBuffer, error) {
	t.Helper()
	dir := writeFiles(t, files)
	engine, logs := app.SetupEngineTest(t, app.Config{DefinitionPaths: []string{dir}})
	art, err := engine.CompileFiles(context.Background())
	return art, logs, err
}
