package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/ludo-technologies/dexstruct/domain"
)

// TomlConfig represents the structure of .dexstruct.toml. Pointer fields
// detect unset values so that defaults survive.
type TomlConfig struct {
	Structure   TomlStructureConfig   `toml:"structure"`
	Output      TomlOutputConfig      `toml:"output"`
	Input       TomlInputConfig       `toml:"input"`
	Performance TomlPerformanceConfig `toml:"performance"`
}

type TomlStructureConfig struct {
	DetectLoops       *bool   `toml:"detect_loops"`
	VerifyDeterminism *bool   `toml:"verify_determinism"`
	FailOnError       *bool   `toml:"fail_on_error"`
	Indent            *string `toml:"indent"`
}

type TomlOutputConfig struct {
	Format string `toml:"format"`
	Path   string `toml:"path"`
}

type TomlInputConfig struct {
	Recursive       *bool    `toml:"recursive"`
	IncludePatterns []string `toml:"include_patterns"`
	ExcludePatterns []string `toml:"exclude_patterns"`
}

type TomlPerformanceConfig struct {
	MaxGoroutines  *int `toml:"max_goroutines"`
	TimeoutSeconds *int `toml:"timeout_seconds"`
}

// TomlConfigLoader loads .dexstruct.toml files
type TomlConfigLoader struct{}

// NewTomlConfigLoader creates a new TOML configuration loader
func NewTomlConfigLoader() *TomlConfigLoader {
	return &TomlConfigLoader{}
}

// LoadConfig loads the nearest .dexstruct.toml above startDir, or defaults
func (l *TomlConfigLoader) LoadConfig(startDir string) (*Config, error) {
	path, err := l.FindConfigFile(startDir)
	if err != nil {
		return DefaultConfig(), nil
	}
	return l.LoadFile(path)
}

// LoadFile parses one TOML file and merges it over the defaults
func (l *TomlConfigLoader) LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := l.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML text and merges it over the defaults
func (l *TomlConfigLoader) Parse(data []byte) (*Config, error) {
	var tc TomlConfig
	if err := toml.Unmarshal(data, &tc); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	l.merge(cfg, &tc)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile walks up the directory tree to find .dexstruct.toml
func (l *TomlConfigLoader) FindConfigFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		dir = startDir
	}
	for {
		configPath := filepath.Join(dir, domain.DefaultConfigFileName)
		if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func (l *TomlConfigLoader) merge(cfg *Config, tc *TomlConfig) {
	s := &tc.Structure
	if s.DetectLoops != nil {
		cfg.Structure.DetectLoops = *s.DetectLoops
	}
	if s.VerifyDeterminism != nil {
		cfg.Structure.VerifyDeterminism = *s.VerifyDeterminism
	}
	if s.FailOnError != nil {
		cfg.Structure.FailOnError = *s.FailOnError
	}
	if s.Indent != nil {
		cfg.Structure.Indent = *s.Indent
	}

	if tc.Output.Format != "" {
		cfg.Output.Format = tc.Output.Format
	}
	if tc.Output.Path != "" {
		cfg.Output.Path = tc.Output.Path
	}

	if tc.Input.Recursive != nil {
		cfg.Input.Recursive = *tc.Input.Recursive
	}
	if len(tc.Input.IncludePatterns) > 0 {
		cfg.Input.IncludePatterns = tc.Input.IncludePatterns
	}
	if tc.Input.ExcludePatterns != nil {
		cfg.Input.ExcludePatterns = tc.Input.ExcludePatterns
	}

	if tc.Performance.MaxGoroutines != nil {
		cfg.Performance.MaxGoroutines = *tc.Performance.MaxGoroutines
	}
	if tc.Performance.TimeoutSeconds != nil {
		cfg.Performance.TimeoutSeconds = *tc.Performance.TimeoutSeconds
	}
}
