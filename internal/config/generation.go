// Package config loads generation settings for the kernel tools.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/iwave.kernels/internal/kernel"
)

// GenerationConfig represents an optional JSON settings file for the kernel
// generator. All fields are pointers so a partial file only overrides the
// values it names; the Get* methods supply defaults for the rest. Command
// line flags take precedence over file values.
type GenerationConfig struct {
	DeltaQ    *float64 `json:"delta_q,omitempty"`
	Sigma     *float64 `json:"sigma,omitempty"`
	NMax      *int     `json:"n_max,omitempty"`
	Workers   *int     `json:"workers,omitempty"`
	OutputDir *string  `json:"output_dir,omitempty"`
}

// Load reads a GenerationConfig from a JSON file. The path must end in
// .json and the file must be under 1MB.
func Load(path string) (*GenerationConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &GenerationConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that any values present are usable. Missing fields are
// fine; their defaults are always valid.
func (c *GenerationConfig) Validate() error {
	if c.DeltaQ != nil && *c.DeltaQ <= 0 {
		return fmt.Errorf("delta_q must be positive, got %g", *c.DeltaQ)
	}
	if c.Sigma != nil && *c.Sigma <= 0 {
		return fmt.Errorf("sigma must be positive, got %g", *c.Sigma)
	}
	if c.NMax != nil && *c.NMax < 1 {
		return fmt.Errorf("n_max must be at least 1, got %d", *c.NMax)
	}
	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", *c.Workers)
	}
	return nil
}

// Params assembles kernel quantisation parameters from the config, falling
// back to the reference defaults for unset fields.
func (c *GenerationConfig) Params() kernel.Params {
	p := kernel.DefaultParams()
	if c.DeltaQ != nil {
		p.DeltaQ = *c.DeltaQ
	}
	if c.Sigma != nil {
		p.Sigma = *c.Sigma
	}
	if c.NMax != nil {
		p.NMax = *c.NMax
	}
	return p
}

// GetWorkers returns the worker count or the single-threaded default.
func (c *GenerationConfig) GetWorkers() int {
	if c.Workers == nil {
		return 1
	}
	return *c.Workers
}

// GetOutputDir returns the output directory or the current directory.
func (c *GenerationConfig) GetOutputDir() string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return "."
	}
	return *c.OutputDir
}
