package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/dexstruct/app"
	"github.com/ludo-technologies/dexstruct/domain"
	"github.com/ludo-technologies/dexstruct/service"
)

// StructureCommand represents the structure command
type StructureCommand struct {
	format     string
	outputPath string
	configPath string
	indent     string

	detectLoops bool
	verify      bool
	failOnError bool

	recursive       bool
	includePatterns []string
	excludePatterns []string

	jobs    int
	timeout time.Duration
}

// NewStructureCommand creates a new structure command with default values
func NewStructureCommand() *StructureCommand {
	return &StructureCommand{
		format:          string(domain.DefaultOutputFormat),
		indent:          domain.DefaultIndent,
		detectLoops:     domain.DefaultDetectLoops,
		recursive:       true,
		includePatterns: domain.DefaultIncludePatterns(),
		excludePatterns: []string{},
		jobs:            domain.DefaultMaxGoroutines,
		timeout:         time.Duration(domain.DefaultTimeoutSeconds) * time.Second,
	}
}

// CreateCobraCommand creates the cobra command for structuring
func (c *StructureCommand) CreateCobraCommand() *cobra.Command {
	formats := make([]string, 0, len(domain.SupportedOutputFormats()))
	for _, f := range domain.SupportedOutputFormats() {
		formats = append(formats, string(f))
	}

	cmd := &cobra.Command{
		Use:   "structure [paths...]",
		Short: "Structure method graphs into nested pseudo-source",
		Long: `Structure every method graph found in the given files or directories.

Each method is printed as bracketed pseudo-source with if/else, switch,
while, do-while and try/catch regions. Methods that fail are reported
without stopping the run.

Examples:
  # Print structured source for every graph under graphs/
  dexstruct structure graphs/

  # Tag loop headers the producer left untagged
  dexstruct structure --detect-loops Foo.json

  # Write a JSON report with digests and region counts
  dexstruct structure --format json --output report.json graphs/

  # Structure twice and fail on any nondeterministic method
  dexstruct structure --verify --fail-on-error graphs/`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.runStructure,
	}

	cmd.Flags().StringVarP(&c.format, "format", "f", c.format, "Output format ("+strings.Join(formats, "|")+")")
	cmd.Flags().StringVarP(&c.outputPath, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringVarP(&c.configPath, "config", "c", "", "Configuration file path")
	cmd.Flags().StringVar(&c.indent, "indent", c.indent, "Indentation unit of printed source")

	cmd.Flags().BoolVar(&c.detectLoops, "detect-loops", c.detectLoops, "Detect and tag untagged loop headers")
	cmd.Flags().BoolVar(&c.verify, "verify", false, "Structure each method twice and compare digests")
	cmd.Flags().BoolVar(&c.failOnError, "fail-on-error", false, "Exit non-zero when any method fails")

	cmd.Flags().BoolVarP(&c.recursive, "recursive", "r", c.recursive, "Recursively search directories")
	cmd.Flags().StringSliceVar(&c.includePatterns, "include", c.includePatterns, "Include file patterns")
	cmd.Flags().StringSliceVar(&c.excludePatterns, "exclude", c.excludePatterns, "Exclude file patterns")

	cmd.Flags().IntVarP(&c.jobs, "jobs", "j", c.jobs, "Methods structured concurrently (0 = one per CPU)")
	cmd.Flags().DurationVar(&c.timeout, "timeout", c.timeout, "Timeout for the whole run (0 = none)")

	return cmd
}

func (c *StructureCommand) runStructure(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)

	format, err := domain.ParseOutputFormat(c.format)
	if err != nil {
		return err
	}

	request := domain.StructureRequest{
		Paths:             args,
		OutputFormat:      format,
		OutputWriter:      cmd.OutOrStdout(),
		OutputPath:        c.outputPath,
		Indent:            c.indent,
		Recursive:         c.recursive,
		IncludePatterns:   c.includePatterns,
		ExcludePatterns:   c.excludePatterns,
		ConfigPath:        c.configPath,
		DetectLoops:       domain.BoolPtr(c.detectLoops),
		VerifyDeterminism: c.verify,
		FailOnError:       c.failOnError,
		MaxGoroutines:     c.jobs,
		Timeout:           c.timeout,
	}

	progress := service.NewProgressManager(cmd.ErrOrStderr())

	useCase, err := app.NewStructureUseCaseBuilder().
		WithService(service.NewStructureService(service.NewGraphReader(), progress, logger)).
		WithGraphReader(service.NewGraphReader()).
		WithFormatter(service.NewStructureFormatter()).
		WithConfigLoader(newConfigLoader(cmd, args)).
		WithOutputWriter(service.NewFileOutputWriter(cmd.ErrOrStderr())).
		Build()
	if err != nil {
		return fmt.Errorf("failed to create structure use case: %w", err)
	}

	logger.Debug("structuring", "paths", args, "format", format)

	response, err := useCase.Execute(cmd.Context(), request)
	if err != nil {
		c.printRecoverySuggestions(cmd, err)
		return err
	}

	logger.Debug("structuring finished",
		"methods", response.Summary.TotalMethods,
		"failed", response.Summary.FailedMethods,
		"warnings", response.Summary.Warnings)
	return nil
}

// printRecoverySuggestions prints the error category and what to try next
func (c *StructureCommand) printRecoverySuggestions(cmd *cobra.Command, err error) {
	categorizer := service.NewErrorCategorizer()
	categorized := categorizer.Categorize(err)
	if categorized == nil {
		return
	}

	w := cmd.ErrOrStderr()
	fmt.Fprintf(w, "%s: %s\n", categorized.Category, categorized.Message)
	for _, suggestion := range categorizer.GetRecoverySuggestions(categorized.Category) {
		fmt.Fprintf(w, "  - %s\n", suggestion)
	}
}

// NewStructureCmd creates and returns the structure cobra command
func NewStructureCmd() *cobra.Command {
	return NewStructureCommand().CreateCobraCommand()
}
