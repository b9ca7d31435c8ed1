package domain

import (
	"context"
	"io"
	"time"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText    OutputFormat = "text"
	OutputFormatJSON    OutputFormat = "json"
	OutputFormatYAML    OutputFormat = "yaml"
	OutputFormatCSV     OutputFormat = "csv"
	OutputFormatMsgpack OutputFormat = "msgpack"
)

// SupportedOutputFormats lists the formats accepted by --format
func SupportedOutputFormats() []OutputFormat {
	return []OutputFormat{
		OutputFormatText,
		OutputFormatJSON,
		OutputFormatYAML,
		OutputFormatCSV,
		OutputFormatMsgpack,
	}
}

// ParseOutputFormat validates a format name
func ParseOutputFormat(s string) (OutputFormat, error) {
	for _, f := range SupportedOutputFormats() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", NewUnsupportedFormatError(s)
}

// StructureRequest represents a request to structure graph documents
type StructureRequest struct {
	// Input files or directories holding graph documents
	Paths []string

	// Output configuration
	OutputFormat OutputFormat
	OutputWriter io.Writer
	OutputPath   string
	Indent       string

	// File selection
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Configuration
	ConfigPath string

	// Structuring options
	DetectLoops       *bool // nil = use default (false), non-nil = explicitly set
	VerifyDeterminism bool
	FailOnError       bool

	// Performance
	MaxGoroutines int
	Timeout       time.Duration
}

// Severity names used in reports
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// StructureDiagnostic is a non-fatal finding on one method
type StructureDiagnostic struct {
	Severity string `json:"severity" yaml:"severity" msgpack:"severity"`
	Offset   int    `json:"offset" yaml:"offset" msgpack:"offset"`
	Message  string `json:"message" yaml:"message" msgpack:"message"`
}

// MethodStats summarises the graph and region shape of a method
type MethodStats struct {
	Blocks         int `json:"blocks" yaml:"blocks" msgpack:"blocks"`
	Edges          int `json:"edges" yaml:"edges" msgpack:"edges"`
	ExceptionEdges int `json:"exception_edges" yaml:"exception_edges" msgpack:"exception_edges"`
	BackEdges      int `json:"back_edges" yaml:"back_edges" msgpack:"back_edges"`
	Loops          int `json:"loops" yaml:"loops" msgpack:"loops"`
	Ifs            int `json:"ifs" yaml:"ifs" msgpack:"ifs"`
	Switches       int `json:"switches" yaml:"switches" msgpack:"switches"`
	Tries          int `json:"tries" yaml:"tries" msgpack:"tries"`
	Statements     int `json:"statements" yaml:"statements" msgpack:"statements"`
}

// MethodResult is the structured form of one method
type MethodResult struct {
	Name string `json:"name" yaml:"name" msgpack:"name"`

	// Source is the bracketed pseudo-source of the method
	Source string `json:"source,omitempty" yaml:"source,omitempty" msgpack:"source,omitempty"`

	// Digest is the hex BLAKE3 hash of Source
	Digest string `json:"digest,omitempty" yaml:"digest,omitempty" msgpack:"digest,omitempty"`

	Stats       MethodStats           `json:"stats" yaml:"stats" msgpack:"stats"`
	Diagnostics []StructureDiagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty" msgpack:"diagnostics,omitempty"`

	// Error is set when the method could not be structured
	Error string `json:"error,omitempty" yaml:"error,omitempty" msgpack:"error,omitempty"`
}

// Failed reports whether structuring the method failed
func (m *MethodResult) Failed() bool {
	return m.Error != ""
}

// FileStructure holds the results of one graph document
type FileStructure struct {
	FilePath string         `json:"file_path" yaml:"file_path" msgpack:"file_path"`
	Source   string         `json:"source,omitempty" yaml:"source,omitempty" msgpack:"source,omitempty"`
	Methods  []MethodResult `json:"methods" yaml:"methods" msgpack:"methods"`
}

// StructureSummary represents aggregate statistics over all methods
type StructureSummary struct {
	TotalFiles        int `json:"total_files" yaml:"total_files" msgpack:"total_files"`
	TotalMethods      int `json:"total_methods" yaml:"total_methods" msgpack:"total_methods"`
	StructuredMethods int `json:"structured_methods" yaml:"structured_methods" msgpack:"structured_methods"`
	FailedMethods     int `json:"failed_methods" yaml:"failed_methods" msgpack:"failed_methods"`
	Warnings          int `json:"warnings" yaml:"warnings" msgpack:"warnings"`

	TotalBlocks int `json:"total_blocks" yaml:"total_blocks" msgpack:"total_blocks"`
	Loops       int `json:"loops" yaml:"loops" msgpack:"loops"`
	Ifs         int `json:"ifs" yaml:"ifs" msgpack:"ifs"`
	Switches    int `json:"switches" yaml:"switches" msgpack:"switches"`
	Tries       int `json:"tries" yaml:"tries" msgpack:"tries"`
}

// StructureResponse represents the complete structuring result
type StructureResponse struct {
	Files   []FileStructure  `json:"files" yaml:"files" msgpack:"files"`
	Summary StructureSummary `json:"summary" yaml:"summary" msgpack:"summary"`

	// Errors lists files that could not be read or decoded
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty" msgpack:"errors,omitempty"`

	GeneratedAt string `json:"generated_at" yaml:"generated_at" msgpack:"generated_at"`
	Version     string `json:"version" yaml:"version" msgpack:"version"`
}

// HasFailures reports whether any file or method failed
func (r *StructureResponse) HasFailures() bool {
	return len(r.Errors) > 0 || r.Summary.FailedMethods > 0
}

// StructureService defines the core business logic for structuring
type StructureService interface {
	// Structure structures every method of every graph file in req.Paths
	Structure(ctx context.Context, req StructureRequest) (*StructureResponse, error)

	// StructureDocument structures every method of one decoded document
	StructureDocument(ctx context.Context, path string, doc *GraphDocument, req StructureRequest) (*FileStructure, error)

	// StructureMethod structures a single method graph. Failures are
	// recorded on the result rather than returned.
	StructureMethod(ctx context.Context, method MethodGraph, req StructureRequest) MethodResult
}

// GraphReader collects and decodes graph documents
type GraphReader interface {
	// CollectGraphFiles finds graph documents in the given paths
	CollectGraphFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error)

	// ReadDocument decodes the graph document at path
	ReadDocument(path string) (*GraphDocument, error)

	// IsGraphFile checks the file extension
	IsGraphFile(path string) bool

	// FileExists checks if a regular file exists
	FileExists(path string) (bool, error)
}

// StructureFormatter defines the interface for formatting structuring results
type StructureFormatter interface {
	// Format formats the response according to the specified format
	Format(response *StructureResponse, format OutputFormat) (string, error)

	// Write writes the formatted output to the writer
	Write(response *StructureResponse, format OutputFormat, writer io.Writer) error
}

// StructureConfigurationLoader loads structuring configuration
type StructureConfigurationLoader interface {
	// LoadConfig loads configuration from the specified path
	LoadConfig(path string) (*StructureRequest, error)

	// LoadDefaultConfig loads the default configuration
	LoadDefaultConfig() *StructureRequest

	// MergeConfig merges CLI flags with configuration file
	MergeConfig(base *StructureRequest, override *StructureRequest) *StructureRequest
}

// BoolPtr creates a pointer to a boolean value
func BoolPtr(b bool) *bool {
	return &b
}

// BoolValue safely dereferences a boolean pointer, returning defaultVal if nil
func BoolValue(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// DefaultStructureRequest returns the default request values
func DefaultStructureRequest() *StructureRequest {
	return &StructureRequest{
		OutputFormat:    OutputFormatText,
		Indent:          DefaultIndent,
		Recursive:       true,
		IncludePatterns: DefaultIncludePatterns(),
		ExcludePatterns: []string{},
		DetectLoops:     BoolPtr(DefaultDetectLoops),
		MaxGoroutines:   DefaultMaxGoroutines,
		Timeout:         time.Duration(DefaultTimeoutSeconds) * time.Second,
	}
}

// Validate validates the structure request
func (req *StructureRequest) Validate() error {
	if len(req.Paths) == 0 {
		return NewInvalidInputError("at least one path must be specified", nil)
	}
	if _, err := ParseOutputFormat(string(req.OutputFormat)); err != nil {
		return err
	}
	if req.MaxGoroutines < 0 {
		return NewInvalidInputError("max goroutines must be >= 0", nil)
	}
	if req.Timeout < 0 {
		return NewInvalidInputError("timeout must be >= 0", nil)
	}
	return nil
}
