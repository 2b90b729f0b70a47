// Package config holds compiler-wide constants and the per-project
// ril.yaml configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level ril.yaml configuration.
type Config struct {
	// Output overrides the default output path (input with .wat).
	Output string `yaml:"output,omitempty"`

	// MemoryPages is the number of 64KiB linear-memory pages declared
	// in the generated module. Defaults to DefaultMemoryPages.
	MemoryPages int `yaml:"memory_pages,omitempty"`

	// Cache configures the compile cache.
	Cache CacheConfig `yaml:"cache,omitempty"`
}

// CacheConfig configures the on-disk compile cache.
type CacheConfig struct {
	// Enabled turns the cache on. Off by default.
	Enabled bool `yaml:"enabled,omitempty"`

	// Path is the cache database file, relative to ril.yaml.
	// Defaults to ".ril/cache.db".
	Path string `yaml:"path,omitempty"`
}

// Default returns the configuration used when no ril.yaml exists.
func Default() *Config {
	return &Config{
		MemoryPages: DefaultMemoryPages,
		Cache:       CacheConfig{Path: filepath.Join(".ril", "cache.db")},
	}
}

// Load reads ril.yaml from dir. A missing file is not an error: the
// defaults apply.
func Load(dir string) (*Config, error) {
	cfg := Default()
	path := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.MemoryPages <= 0 {
		cfg.MemoryPages = DefaultMemoryPages
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = filepath.Join(".ril", "cache.db")
	}
	return cfg, nil
}
