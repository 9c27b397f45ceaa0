// Package config provides reading and writing of notesearch configuration.
// Supports both global (~/.notesearch/config.yaml) and local
// (.notesearch/config.yaml). Reading: uses local if it exists, otherwise
// global. Writing: defaults to global.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoConfigPath is returned when the config path cannot be determined.
	ErrNoConfigPath = errors.New("cannot determine config path")
	// ErrUnknownKey is returned when getting/setting an unknown config key.
	ErrUnknownKey = errors.New("unknown config key")
	// ErrInvalidValue is returned when a config value is invalid.
	ErrInvalidValue = errors.New("invalid config value")
)

// Scope represents the configuration scope (global or local).
type Scope int

const (
	// ScopeGlobal is user-wide config in ~/.notesearch/config.yaml (default)
	ScopeGlobal Scope = iota
	// ScopeLocal is directory-specific config in .notesearch/config.yaml
	ScopeLocal
)

// Index holds index population options.
type Index struct {
	BatchSize *int `yaml:"batch_size,omitempty"`
}

// Fuzzy holds fuzzy-operator tuning options.
type Fuzzy struct {
	MaxDistance    *int `yaml:"max_distance,omitempty"`
	MinTokenLength *int `yaml:"min_token_length,omitempty"`
}

// Search holds query-time options.
type Search struct {
	MaxResults *int `yaml:"max_results,omitempty"`
}

// Defaults applied when not configured.
const (
	DefaultBatchSize      = 100
	DefaultMaxDistance    = 2
	DefaultMinTokenLength = 3
	DefaultMaxResults     = 0 // unlimited
)

// Validation bounds for configuration values.
const (
	MinBatchSize   = 1
	MaxBatchSize   = 100000
	MinDistance    = 1
	MaxDistance    = 10
	MinTokenLenLow = 1
	MinTokenLenHi  = 64
	MinResults     = 0
	MaxResults     = 1000000
)

// Config contains configuration for notesearch.
type Config struct {
	DB     string `yaml:"db,omitempty"`
	Index  Index  `yaml:"index,omitempty"`
	Fuzzy  Fuzzy  `yaml:"fuzzy,omitempty"`
	Search Search `yaml:"search,omitempty"`

	// path is the file this config was loaded from (for Save)
	path  string
	scope Scope
}

// Validate checks that all configured values are within acceptable bounds.
// Returns nil if all values are valid or not set (defaults will be used).
func (c *Config) Validate() error {
	if c.Index.BatchSize != nil {
		v := *c.Index.BatchSize
		if v < MinBatchSize || v > MaxBatchSize {
			return fmt.Errorf("%w: index.batch_size must be between %d and %d, got %d",
				ErrInvalidValue, MinBatchSize, MaxBatchSize, v)
		}
	}
	if c.Fuzzy.MaxDistance != nil {
		v := *c.Fuzzy.MaxDistance
		if v < MinDistance || v > MaxDistance {
			return fmt.Errorf("%w: fuzzy.max_distance must be between %d and %d, got %d",
				ErrInvalidValue, MinDistance, MaxDistance, v)
		}
	}
	if c.Fuzzy.MinTokenLength != nil {
		v := *c.Fuzzy.MinTokenLength
		if v < MinTokenLenLow || v > MinTokenLenHi {
			return fmt.Errorf("%w: fuzzy.min_token_length must be between %d and %d, got %d",
				ErrInvalidValue, MinTokenLenLow, MinTokenLenHi, v)
		}
	}
	if c.Search.MaxResults != nil {
		v := *c.Search.MaxResults
		if v < MinResults || v > MaxResults {
			return fmt.Errorf("%w: search.max_results must be between %d and %d, got %d",
				ErrInvalidValue, MinResults, MaxResults, v)
		}
	}
	return nil
}

// BatchSize returns the population batch size (defaults to 100).
func (c *Config) BatchSize() int {
	if c.Index.BatchSize == nil {
		return DefaultBatchSize
	}
	return *c.Index.BatchSize
}

// FuzzyMaxDistance returns the maximum fuzzy edit distance (defaults to 2).
func (c *Config) FuzzyMaxDistance() int {
	if c.Fuzzy.MaxDistance == nil {
		return DefaultMaxDistance
	}
	return *c.Fuzzy.MaxDistance
}

// FuzzyMinTokenLength returns the shortest token eligible for fuzzy
// matching (defaults to 3).
func (c *Config) FuzzyMinTokenLength() int {
	if c.Fuzzy.MinTokenLength == nil {
		return DefaultMinTokenLength
	}
	return *c.Fuzzy.MinTokenLength
}

// MaxResults returns the query result cap (defaults to 0, unlimited).
func (c *Config) MaxResults() int {
	if c.Search.MaxResults == nil {
		return DefaultMaxResults
	}
	return *c.Search.MaxResults
}

// LocalPath returns the path to the local (per-directory) config file.
func LocalPath() string {
	return filepath.Join(".notesearch", "config.yaml")
}

// GlobalPath returns the path to the global (user) config file:
// ~/.notesearch/config.yaml
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".notesearch", "config.yaml")
}

// Load reads configuration: uses local if it exists, otherwise global.
func Load() (*Config, error) {
	// Check if local config exists
	if _, err := os.Stat(LocalPath()); err == nil {
		return LoadScope(ScopeLocal)
	}
	// Fall back to global
	return LoadScope(ScopeGlobal)
}

// LoadScope reads configuration from a specific scope.
func LoadScope(scope Scope) (*Config, error) {
	path := pathForScope(scope)
	if path == "" {
		return &Config{scope: scope}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{path: path, scope: scope}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("malformed config file %s: %w\n\nTo fix: edit the file to correct the YAML syntax, or delete it to use defaults", path, err)
	}
	cfg.path = path
	cfg.scope = scope

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Scope returns which scope this config was loaded from.
func (c *Config) Scope() Scope {
	return c.scope
}

// Save writes the configuration to its original location.
func (c *Config) Save() error {
	if c.path == "" {
		c.path = pathForScope(c.scope)
	}
	if c.path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(c.path)
}

// SaveScope writes the configuration to the specified scope.
func (c *Config) SaveScope(scope Scope) error {
	path := pathForScope(scope)
	if path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(path)
}

// saveToPath writes configuration to a specific filesystem path.
// Creates parent directories as needed with mode 0755.
func (c *Config) saveToPath(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// pathForScope returns the filesystem path for a given scope.
func pathForScope(scope Scope) string {
	switch scope {
	case ScopeLocal:
		return LocalPath()
	case ScopeGlobal:
		return GlobalPath()
	default:
		return ""
	}
}
