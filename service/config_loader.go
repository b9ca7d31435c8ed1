package service

import (
	"os"
	"time"

	"github.com/ludo-technologies/dexstruct/domain"
	"github.com/ludo-technologies/dexstruct/internal/config"
)

// ConfigurationLoaderImpl loads structuring configuration and merges
// explicitly set command-line flags over it
type ConfigurationLoaderImpl struct {
	flags    *config.ExplicitFlags
	startDir string
}

// NewConfigurationLoader creates a loader. explicitFlags names the flags
// the user set on the command line.
func NewConfigurationLoader(explicitFlags map[string]bool) *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{
		flags:    config.NewExplicitFlags(explicitFlags),
		startDir: ".",
	}
}

// WithStartDir sets the directory config discovery starts from
func (c *ConfigurationLoaderImpl) WithStartDir(dir string) *ConfigurationLoaderImpl {
	if dir != "" {
		c.startDir = dir
	}
	return c
}

// LoadConfig loads configuration from the specified path
func (c *ConfigurationLoaderImpl) LoadConfig(path string) (*domain.StructureRequest, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}
	return ConfigToRequest(cfg), nil
}

// LoadDefaultConfig discovers a config file from the start directory and
// falls back to the built-in defaults when none loads
func (c *ConfigurationLoaderImpl) LoadDefaultConfig() *domain.StructureRequest {
	cfg, _, err := config.Discover(c.startDir)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	return ConfigToRequest(cfg)
}

// MergeConfig overlays explicitly set flags from override onto base
func (c *ConfigurationLoaderImpl) MergeConfig(base *domain.StructureRequest, override *domain.StructureRequest) *domain.StructureRequest {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := *base

	// Paths and writers always come from the command
	if len(override.Paths) > 0 {
		merged.Paths = override.Paths
	}
	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}
	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}

	merged.OutputFormat = config.Pick(c.flags, "format", merged.OutputFormat, override.OutputFormat)
	merged.OutputPath = config.Pick(c.flags, "output", merged.OutputPath, override.OutputPath)
	merged.Indent = config.Pick(c.flags, "indent", merged.Indent, override.Indent)

	merged.Recursive = config.Pick(c.flags, "recursive", merged.Recursive, override.Recursive)
	merged.IncludePatterns = config.PickSlice(c.flags, "include", merged.IncludePatterns, override.IncludePatterns)
	merged.ExcludePatterns = config.PickSlice(c.flags, "exclude", merged.ExcludePatterns, override.ExcludePatterns)

	if c.flags.Has("detect-loops") && override.DetectLoops != nil {
		merged.DetectLoops = domain.BoolPtr(*override.DetectLoops)
	}
	merged.VerifyDeterminism = config.Pick(c.flags, "verify", merged.VerifyDeterminism, override.VerifyDeterminism)
	merged.FailOnError = config.Pick(c.flags, "fail-on-error", merged.FailOnError, override.FailOnError)

	merged.MaxGoroutines = config.Pick(c.flags, "jobs", merged.MaxGoroutines, override.MaxGoroutines)
	merged.Timeout = config.Pick(c.flags, "timeout", merged.Timeout, override.Timeout)

	return &merged
}

// ConfigToRequest converts the file configuration into a request
func ConfigToRequest(cfg *config.Config) *domain.StructureRequest {
	format, err := domain.ParseOutputFormat(cfg.Output.Format)
	if err != nil {
		format = domain.DefaultOutputFormat
	}

	return &domain.StructureRequest{
		OutputFormat:      format,
		OutputWriter:      os.Stdout,
		OutputPath:        cfg.Output.Path,
		Indent:            cfg.Structure.Indent,
		Recursive:         cfg.Input.Recursive,
		IncludePatterns:   cfg.Input.IncludePatterns,
		ExcludePatterns:   cfg.Input.ExcludePatterns,
		DetectLoops:       domain.BoolPtr(cfg.Structure.DetectLoops),
		VerifyDeterminism: cfg.Structure.VerifyDeterminism,
		FailOnError:       cfg.Structure.FailOnError,
		MaxGoroutines:     cfg.Performance.MaxGoroutines,
		Timeout:           time.Duration(cfg.Performance.TimeoutSeconds) * time.Second,
	}
}
