package app

import (
	"io"

	"github.com/vk/flowgrid/internal/registry"
	"github.com/vk/flowgrid/modules/core"
	"github.com/vk/flowgrid/modules/env_vars"
	"github.com/vk/flowgrid/modules/print"
)

// defaultModules is the list of modules an Engine registers when none are
// given. print writes to the engine's output.
func defaultModules(outW io.Writer) []registry.Module {
	return []registry.Module{
		&core.Module{},
		&env_vars.Module{},
		&print.Module{W: outW},
	}
}
