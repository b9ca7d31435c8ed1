package domain

// Default structuring settings. The config template and the CLI flag
// defaults are rendered from these values.
const (
	// DefaultIndent is the indentation unit of printed pseudo-source
	DefaultIndent = "    "

	// DefaultDetectLoops leaves loop tagging to the graph producer
	DefaultDetectLoops = false

	// DefaultMaxGoroutines bounds concurrent method structuring
	DefaultMaxGoroutines = 4

	// DefaultTimeoutSeconds bounds a whole structuring run
	DefaultTimeoutSeconds = 300

	// DefaultOutputFormat is the report format
	DefaultOutputFormat = OutputFormatText

	// DefaultConfigFileName is the dedicated TOML configuration file
	DefaultConfigFileName = ".dexstruct.toml"
)

// GraphFileExtensions lists the extensions recognised as graph documents
var GraphFileExtensions = []string{".json", ".yaml", ".yml", ".msgpack", ".mpk"}

// DefaultIncludePatterns returns the include globs used when none are configured
func DefaultIncludePatterns() []string {
	return []string{"**/*.json", "**/*.yaml", "**/*.yml", "**/*.msgpack", "**/*.mpk"}
}
