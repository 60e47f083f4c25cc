package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Config holds output selection and run settings.
type Config struct {
	// Paths
	OutputDir string `json:"output_dir"`

	// Outputs
	Compact   bool `json:"compact"`
	NumPy     bool `json:"numpy"`
	Rotations bool `json:"rotations"`
	Manifest  bool `json:"manifest"`
	Precision *int `json:"precision"` // nil or negative: shortest round-trip repr

	// Run settings
	Workers  int    `json:"workers"`
	Stream   bool   `json:"stream"`
	LogLevel string `json:"log_level"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults derived from the input path.
// CLI flags take priority when non-zero/non-empty; boolean switches are
// enabled by either source.
func (c *Config) Resolve(flags Flags, input string) {
	// CLI flags override config file
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Precision >= 0 {
		p := flags.Precision
		c.Precision = &p
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	c.Compact = c.Compact || flags.Compact
	c.NumPy = c.NumPy || flags.NumPy
	c.Rotations = c.Rotations || flags.Rotations
	c.Manifest = c.Manifest || flags.Manifest
	c.Stream = c.Stream || flags.Stream

	// Outputs land next to the input unless told otherwise
	if c.OutputDir == "" {
		c.OutputDir = filepath.Dir(input)
	}

	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Precision == nil {
		p := -1
		c.Precision = &p
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// FloatPrecision returns the configured decimal places, -1 for shortest.
func (c *Config) FloatPrecision() int {
	if c.Precision == nil || *c.Precision < 0 {
		return -1
	}
	return *c.Precision
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	OutputDir string
	Workers   int
	Precision int // negative when unset
	LogLevel  string
	Compact   bool
	NumPy     bool
	Rotations bool
	Manifest  bool
	Stream    bool
}
