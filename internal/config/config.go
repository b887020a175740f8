package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config holds import settings. Files may be JSON or TOML; the format is
// picked by extension.
type Config struct {
	// Paths
	NameDB    string `json:"name_db" toml:"name_db"`
	OutputDir string `json:"output_dir" toml:"output_dir"`

	// Import settings
	Workers       int     `json:"workers" toml:"workers"`
	LogLevel      string  `json:"log_level" toml:"log_level"`
	WeightEpsilon float64 `json:"weight_epsilon" toml:"weight_epsilon"`
	MaxWeights    int     `json:"max_weights" toml:"max_weights"`
	MaxChunkMiB   int     `json:"max_chunk_mib" toml:"max_chunk_mib"`

	// Preview settings
	Preview     bool `json:"preview" toml:"preview"`
	PreviewSize int  `json:"preview_size" toml:"preview_size"`
	Supersample int  `json:"supersample" toml:"supersample"`
}

// Load reads a config file. Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	NameDB    string
	OutputDir string
	Workers   int
	LogLevel  string
	Preview   bool
}

// Resolve applies flags and fills empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.NameDB != "" {
		c.NameDB = flags.NameDB
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	if flags.Preview {
		c.Preview = true
	}

	if c.OutputDir == "" {
		c.OutputDir = "imported"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.WeightEpsilon <= 0 {
		c.WeightEpsilon = 1e-3
	}
	if c.MaxWeights <= 0 {
		c.MaxWeights = 8
	}
	if c.MaxChunkMiB <= 0 {
		c.MaxChunkMiB = 256
	}
	if c.PreviewSize <= 0 {
		c.PreviewSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
}

// MaxChunkBytes returns the chunk ceiling in bytes.
func (c Config) MaxChunkBytes() uint64 {
	return uint64(c.MaxChunkMiB) << 20
}
