package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ludo-technologies/dexstruct/domain"
)

// StructureUseCase orchestrates the structuring workflow: configuration,
// file discovery, structuring and report output
type StructureUseCase struct {
	service      domain.StructureService
	reader       domain.GraphReader
	formatter    domain.StructureFormatter
	configLoader domain.StructureConfigurationLoader
	output       domain.ReportWriter
}

// NewStructureUseCase creates a new structure use case
func NewStructureUseCase(
	service domain.StructureService,
	reader domain.GraphReader,
	formatter domain.StructureFormatter,
	configLoader domain.StructureConfigurationLoader,
	output domain.ReportWriter,
) *StructureUseCase {
	return &StructureUseCase{
		service:      service,
		reader:       reader,
		formatter:    formatter,
		configLoader: configLoader,
		output:       output,
	}
}

// Execute structures every graph document under req.Paths and writes the
// report. The response is returned alongside a failure error when
// FailOnError is set and some file or method failed.
func (uc *StructureUseCase) Execute(ctx context.Context, req domain.StructureRequest) (*domain.StructureResponse, error) {
	if len(req.Paths) == 0 {
		return nil, domain.NewInvalidInputError("no input paths specified", nil)
	}

	finalReq, err := uc.loadAndMergeConfig(req)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration", err)
	}
	if err := finalReq.Validate(); err != nil {
		return nil, err
	}

	files, err := uc.reader.CollectGraphFiles(
		finalReq.Paths,
		finalReq.Recursive,
		finalReq.IncludePatterns,
		finalReq.ExcludePatterns,
	)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, domain.NewInvalidInputError("no graph files found in the specified paths", nil)
	}
	finalReq.Paths = files

	response, err := uc.service.Structure(ctx, finalReq)
	if err != nil {
		return nil, domain.NewAnalysisError("structuring failed", err)
	}

	writer := finalReq.OutputWriter
	if writer == nil {
		writer = os.Stdout
	}
	err = uc.output.Write(writer, finalReq.OutputPath, finalReq.OutputFormat, func(w io.Writer) error {
		return uc.formatter.Write(response, finalReq.OutputFormat, w)
	})
	if err != nil {
		return response, err
	}

	if finalReq.FailOnError && response.HasFailures() {
		return response, domain.NewAnalysisError(
			fmt.Sprintf("%d of %d methods failed, %d files unreadable",
				response.Summary.FailedMethods, response.Summary.TotalMethods, len(response.Errors)),
			nil)
	}
	return response, nil
}

// loadAndMergeConfig loads configuration from file and merges the request over it
func (uc *StructureUseCase) loadAndMergeConfig(req domain.StructureRequest) (domain.StructureRequest, error) {
	if uc.configLoader == nil {
		return req, nil
	}

	var configReq *domain.StructureRequest
	if req.ConfigPath != "" {
		loaded, err := uc.configLoader.LoadConfig(req.ConfigPath)
		if err != nil {
			return req, fmt.Errorf("failed to load config from %s: %w", req.ConfigPath, err)
		}
		configReq = loaded
	} else {
		configReq = uc.configLoader.LoadDefaultConfig()
	}

	if configReq == nil {
		return req, nil
	}
	return *uc.configLoader.MergeConfig(configReq, &req), nil
}

// StructureUseCaseBuilder assembles a StructureUseCase
type StructureUseCaseBuilder struct {
	service      domain.StructureService
	reader       domain.GraphReader
	formatter    domain.StructureFormatter
	configLoader domain.StructureConfigurationLoader
	output       domain.ReportWriter
}

// NewStructureUseCaseBuilder creates a new builder
func NewStructureUseCaseBuilder() *StructureUseCaseBuilder {
	return &StructureUseCaseBuilder{}
}

// WithService sets the structure service
func (b *StructureUseCaseBuilder) WithService(service domain.StructureService) *StructureUseCaseBuilder {
	b.service = service
	return b
}

// WithGraphReader sets the graph reader
func (b *StructureUseCaseBuilder) WithGraphReader(reader domain.GraphReader) *StructureUseCaseBuilder {
	b.reader = reader
	return b
}

// WithFormatter sets the formatter
func (b *StructureUseCaseBuilder) WithFormatter(formatter domain.StructureFormatter) *StructureUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithConfigLoader sets the configuration loader; optional
func (b *StructureUseCaseBuilder) WithConfigLoader(loader domain.StructureConfigurationLoader) *StructureUseCaseBuilder {
	b.configLoader = loader
	return b
}

// WithOutputWriter sets the report writer
func (b *StructureUseCaseBuilder) WithOutputWriter(output domain.ReportWriter) *StructureUseCaseBuilder {
	b.output = output
	return b
}

// Build creates the StructureUseCase
func (b *StructureUseCaseBuilder) Build() (*StructureUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("structure service is required")
	}
	if b.reader == nil {
		return nil, fmt.Errorf("graph reader is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("formatter is required")
	}
	if b.output == nil {
		return nil, fmt.Errorf("report writer is required")
	}
	return NewStructureUseCase(b.service, b.reader, b.formatter, b.configLoader, b.output), nil
}
