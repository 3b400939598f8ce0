package app

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/flowgrid/internal/registry"
	"github.com/vk/flowgrid/internal/testutil"
)

// SetupEngineTest creates an engine logging at debug level into the
// returned buffer. Set FLOWGRID_TEST_LOGS=true to print the log when the
// test ends.
func SetupEngineTest(t *testing.T, cfg Config, modules ...registry.Module) (*Engine, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	validated, err := NewConfig(cfg)
	require.NoError(t, err)

	engine, err := New(logBuffer, validated, modules...)
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("FLOWGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})
	return engine, logBuffer
}
