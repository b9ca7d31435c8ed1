package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ludo-technologies/dexstruct/domain"
)

// Config represents the main configuration structure
type Config struct {
	// Structure holds structuring engine options
	Structure StructureConfig `mapstructure:"structure" yaml:"structure"`

	// Output holds output formatting configuration
	Output OutputConfig `mapstructure:"output" yaml:"output"`

	// Input holds graph document discovery configuration
	Input InputConfig `mapstructure:"input" yaml:"input"`

	// Performance holds concurrency limits
	Performance PerformanceConfig `mapstructure:"performance" yaml:"performance"`
}

// StructureConfig holds options of the structuring engine
type StructureConfig struct {
	// DetectLoops tags loop headers the input left untagged
	DetectLoops bool `mapstructure:"detect_loops" yaml:"detect_loops"`

	// VerifyDeterminism structures every method twice and compares digests
	VerifyDeterminism bool `mapstructure:"verify_determinism" yaml:"verify_determinism"`

	// FailOnError makes the command exit non-zero when a method fails
	FailOnError bool `mapstructure:"fail_on_error" yaml:"fail_on_error"`

	// Indent is the indentation unit of the pseudo-source
	Indent string `mapstructure:"indent" yaml:"indent"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml, csv, msgpack
	Format string `mapstructure:"format" yaml:"format"`

	// Path writes the report to a file instead of stdout
	Path string `mapstructure:"path" yaml:"path"`
}

// InputConfig holds graph document discovery configuration
type InputConfig struct {
	Recursive       bool     `mapstructure:"recursive" yaml:"recursive"`
	IncludePatterns []string `mapstructure:"include_patterns" yaml:"include_patterns"`
	ExcludePatterns []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns"`
}

// PerformanceConfig holds concurrency limits
type PerformanceConfig struct {
	// MaxGoroutines bounds the number of methods structured at once; 0 means one per CPU
	MaxGoroutines int `mapstructure:"max_goroutines" yaml:"max_goroutines"`

	// TimeoutSeconds bounds a whole run; 0 disables the timeout
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Structure: StructureConfig{
			DetectLoops:       domain.DefaultDetectLoops,
			VerifyDeterminism: false,
			FailOnError:       false,
			Indent:            domain.DefaultIndent,
		},
		Output: OutputConfig{
			Format: string(domain.DefaultOutputFormat),
		},
		Input: InputConfig{
			Recursive:       true,
			IncludePatterns: domain.DefaultIncludePatterns(),
			ExcludePatterns: []string{},
		},
		Performance: PerformanceConfig{
			MaxGoroutines:  domain.DefaultMaxGoroutines,
			TimeoutSeconds: domain.DefaultTimeoutSeconds,
		},
	}
}

// LoadConfig loads configuration from a file. TOML files go through the
// TOML loader; YAML and JSON files are read with viper. An empty path
// discovers a config file starting at the working directory.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return DefaultConfig(), nil
		}
		cfg, _, err := Discover(wd)
		return cfg, err
	}

	if strings.EqualFold(filepath.Ext(configPath), ".toml") {
		return NewTomlConfigLoader().LoadFile(configPath)
	}
	return loadViperConfig(configPath)
}

// Discover finds the nearest configuration for startDir: .dexstruct.toml
// in startDir or a parent, then a YAML or JSON file in startDir. It returns
// the path it loaded, or "" when defaults were used.
func Discover(startDir string) (*Config, string, error) {
	loader := NewTomlConfigLoader()
	if path, err := loader.FindConfigFile(startDir); err == nil {
		cfg, err := loader.LoadFile(path)
		return cfg, path, err
	}

	for _, candidate := range viperConfigNames {
		path := filepath.Join(startDir, candidate)
		if _, err := os.Stat(path); err == nil {
			cfg, err := loadViperConfig(path)
			return cfg, path, err
		}
	}

	return DefaultConfig(), "", nil
}

var viperConfigNames = []string{
	"dexstruct.yaml",
	"dexstruct.yml",
	".dexstruct.yaml",
	".dexstruct.yml",
	"dexstruct.json",
	".dexstruct.json",
}

func loadViperConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if _, err := domain.ParseOutputFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if c.Performance.MaxGoroutines < 0 {
		return fmt.Errorf("performance.max_goroutines must be >= 0, got %d", c.Performance.MaxGoroutines)
	}
	if c.Performance.TimeoutSeconds < 0 {
		return fmt.Errorf("performance.timeout_seconds must be >= 0, got %d", c.Performance.TimeoutSeconds)
	}
	if strings.TrimLeft(c.Structure.Indent, " \t") != "" {
		return fmt.Errorf("structure.indent may only hold spaces and tabs, got %q", c.Structure.Indent)
	}
	return nil
}

// SaveConfig saves configuration to a YAML or JSON file
func SaveConfig(config *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext == "" {
		v.SetConfigType("yaml")
	}

	v.Set("structure", map[string]interface{}{
		"detect_loops":       config.Structure.DetectLoops,
		"verify_determinism": config.Structure.VerifyDeterminism,
		"fail_on_error":      config.Structure.FailOnError,
		"indent":             config.Structure.Indent,
	})
	v.Set("output", map[string]interface{}{
		"format": config.Output.Format,
		"path":   config.Output.Path,
	})
	v.Set("input", map[string]interface{}{
		"recursive":        config.Input.Recursive,
		"include_patterns": config.Input.IncludePatterns,
		"exclude_patterns": config.Input.ExcludePatterns,
	})
	v.Set("performance", map[string]interface{}{
		"max_goroutines":  config.Performance.MaxGoroutines,
		"timeout_seconds": config.Performance.TimeoutSeconds,
	})

	return v.WriteConfig()
}
