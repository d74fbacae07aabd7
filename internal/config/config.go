// Package config loads the minifw.yaml configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bernotieno/mini-framework/pkg/state"
)

const (
	// ConfigFileName is the default name of the configuration file.
	ConfigFileName = "minifw.yaml"

	// DefaultAddr is the default devtools listen address.
	DefaultAddr = "localhost:6333"
)

// Config is the complete minifw.yaml schema.
type Config struct {
	// Engine holds state engine limits and tracing.
	Engine EngineConfig `yaml:"engine"`

	// Devtools holds the inspection server configuration.
	Devtools DevtoolsConfig `yaml:"devtools"`

	// Persist holds the optional file persistence configuration.
	Persist PersistConfig `yaml:"persist"`
}

// EngineConfig configures engine limits. Zero values keep the engine
// defaults.
type EngineConfig struct {
	MaxDepth           int `yaml:"maxDepth"`
	MaxSubscribers     int `yaml:"maxSubscribers"`
	MaxUpdatesPerCycle int `yaml:"maxUpdatesPerCycle"`

	// Tracing names the OpenTelemetry tracer; empty disables tracing.
	Tracing string `yaml:"tracing"`
}

// DevtoolsConfig configures the inspection server.
type DevtoolsConfig struct {
	// Addr is the listen address (default: localhost:6333).
	Addr string `yaml:"addr"`

	// Disabled turns the inspection server off.
	Disabled bool `yaml:"disabled"`
}

// PersistConfig configures file persistence for one path.
// Persistence is enabled when Path is non-empty.
type PersistConfig struct {
	// Dir is the blob directory (default: ".minifw").
	Dir string `yaml:"dir"`

	// Path is the engine path to mirror.
	Path string `yaml:"path"`

	// Key is the blob file name (default: "<path>.json").
	Key string `yaml:"key"`

	// Watch restores the path when the blob is edited externally.
	Watch bool `yaml:"watch"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Devtools: DevtoolsConfig{Addr: DefaultAddr},
		Persist:  PersistConfig{Dir: ".minifw"},
	}
}

// Load reads the configuration from path, or from ConfigFileName when
// path is empty. A missing file yields the defaults, not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigFileName
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Devtools.Addr == "" {
		c.Devtools.Addr = DefaultAddr
	}
	if c.Persist.Dir == "" {
		c.Persist.Dir = ".minifw"
	}
	if c.Persist.Path != "" && c.Persist.Key == "" {
		c.Persist.Key = c.Persist.Path + ".json"
	}
}

// EngineOptions translates the engine section into state options.
func (c *Config) EngineOptions() []state.Option {
	var opts []state.Option
	if c.Engine.MaxDepth > 0 {
		opts = append(opts, state.WithMaxDepth(c.Engine.MaxDepth))
	}
	if c.Engine.MaxSubscribers > 0 {
		opts = append(opts, state.WithMaxSubscribers(c.Engine.MaxSubscribers))
	}
	if c.Engine.MaxUpdatesPerCycle > 0 {
		opts = append(opts, state.WithMaxUpdatesPerCycle(c.Engine.MaxUpdatesPerCycle))
	}
	if c.Engine.Tracing != "" {
		opts = append(opts, state.WithTracing(c.Engine.Tracing))
	}
	return opts
}
