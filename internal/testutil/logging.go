package testutil

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/flowgrid/internal/ctxlog"
)

// LogContext returns a context carrying a debug-level text logger that
// writes into the returned buffer. Set FLOWGRID_TEST_LOGS=true to echo the
// captured output when the test ends.
func LogContext(t *testing.T) (context.Context, *SafeBuffer) {
	t.Helper()

	buf := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if os.Getenv("FLOWGRID_TEST_LOGS") == "true" {
		t.Cleanup(func() {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), buf.String())
		})
	}
	return ctxlog.WithLogger(context.Background(), logger), buf
}

// AssertLogged checks that some log line contains msg and every attr, given
// as "key=value" in text handler form.
func AssertLogged(t *testing.T, buf *SafeBuffer, msg string, attrs ...string) {
	t.Helper()

	for _, line := range strings.Split(buf.String(), "\n") {
		if !strings.Contains(line, msg) {
			continue
		}
		matched := true
		for _, attr := range attrs {
			if !strings.Contains(line, attr) {
				matched = false
				break
			}
		}
		if matched {
			return
		}
	}
	require.Failf(t, "log line not found", "no line with %q and %v in:\n%s", msg, attrs, buf.String())
}
