package dtable

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the file form of the engine options.
//
//	parallelism: 8
//	min_parallel_rows: 65536
//	memory_limit_bytes: 2147483648
//	max_workers: 8
//	log_level: debug
//	join_suffix: _b
type Config struct {
	Parallelism      int    `yaml:"parallelism,omitempty"`
	MinParallelRows  int    `yaml:"min_parallel_rows,omitempty"`
	MemoryLimitBytes int64  `yaml:"memory_limit_bytes,omitempty"`
	MaxWorkers       int64  `yaml:"max_workers,omitempty"`
	LogLevel         string `yaml:"log_level,omitempty"`
	JoinSuffix       string `yaml:"join_suffix,omitempty"`
}

// ParseConfig parses a YAML configuration.
func ParseConfig(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: invalid YAML: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadConfig parses a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: cannot read %s: %w", path, err)
	}
	return ParseConfig(data)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Parallelism < 0 {
		return fmt.Errorf("config: parallelism must be >= 0, got %d", c.Parallelism)
	}
	if c.MinParallelRows < 0 {
		return fmt.Errorf("config: min_parallel_rows must be >= 0, got %d", c.MinParallelRows)
	}
	if c.MemoryLimitBytes < 0 {
		return fmt.Errorf("config: memory_limit_bytes must be >= 0, got %d", c.MemoryLimitBytes)
	}
	if c.MaxWorkers < 0 {
		return fmt.Errorf("config: max_workers must be >= 0, got %d", c.MaxWorkers)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

func (c *Config) level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("config: invalid log_level %q", c.LogLevel)
	}
	return l, nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
