package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name     string
		cfg      Config
		expected *Config
		hasError bool
	}{
		{
			name:     "defaults",
			cfg:      Config{},
			expected: &Config{Backend: "interp", LogFormat: "text", LogLevel: "info"},
		},
		{
			name:     "explicit values",
			cfg:      Config{Backend: "custom", LogFormat: "json", LogLevel: "debug", DefinitionPaths: []string{"defs"}},
			expected: &Config{Backend: "custom", LogFormat: "json", LogLevel: "debug", DefinitionPaths: []string{"defs"}},
		},
		{name: "bad format", cfg: Config{LogFormat: "xml"}, hasError: true},
		{name: "bad level", cfg: Config{LogLevel: "verbose"}, hasError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.cfg)
			if tc.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, cfg)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowgrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
definition_paths: [graphs, extra.hcl]
root: main
log_level: debug
tracing: true
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		DefinitionPaths: []string{"graphs", "extra.hcl"},
		Root:            "main",
		Backend:         "interp",
		LogFormat:       "text",
		LogLevel:        "debug",
		Tracing:         true,
	}, cfg)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
