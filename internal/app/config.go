package app

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/vk/flowgrid/internal/interp"
	"gopkg.in/yaml.v3"
)

// Config holds all the necessary configuration for an Engine.
type Config struct {
	// DefinitionPaths are files or directories holding graph definitions.
	DefinitionPaths []string `yaml:"definition_paths"`
	// Root overrides the root graph named in the definitions.
	Root string `yaml:"root"`
	// Backend names the backend used by Compile.
	Backend string `yaml:"backend" validate:"required"`

	LogFormat string `yaml:"log_format" validate:"oneof=text json"`
	LogLevel  string `yaml:"log_level" validate:"oneof=debug info warn error"`
	// Tracing records compile spans with the global OpenTelemetry provider.
	Tracing bool `yaml:"tracing"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewConfig applies defaults to cfg and validates it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Backend == "" {
		cfg.Backend = interp.Name
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// LoadConfig reads a YAML configuration file and passes it to NewConfig.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration %s: %w", path, err)
	}
	return NewConfig(cfg)
}
