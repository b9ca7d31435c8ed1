package mcp

import (
	"io"
	"log/slog"

	"github.com/ludo-technologies/dexstruct/app"
	"github.com/ludo-technologies/dexstruct/domain"
	"github.com/ludo-technologies/dexstruct/service"
)

// Dependencies aggregates the shared services required by MCP handlers.
type Dependencies struct {
	reader     domain.GraphReader
	configPath string
	logger     *slog.Logger
}

// NewDependencies constructs the dependency set. configPath may be empty
// to discover a config file from each requested path.
func NewDependencies(configPath string, logger *slog.Logger) *Dependencies {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dependencies{
		reader:     service.NewGraphReader(),
		configPath: configPath,
		logger:     logger,
	}
}

// ConfigPath returns the configured config file path.
func (d *Dependencies) ConfigPath() string {
	return d.configPath
}

// Logger returns the server logger.
func (d *Dependencies) Logger() *slog.Logger {
	return d.logger
}

// BuildStructureService creates a service without a progress bar, since
// stdout carries the JSON-RPC stream.
func (d *Dependencies) BuildStructureService() *service.StructureServiceImpl {
	return service.NewStructureService(d.reader, nil, d.logger)
}

// BuildStructureUseCase assembles a use case whose status messages are
// discarded. explicit names the request fields the tool caller set.
func (d *Dependencies) BuildStructureUseCase(explicit map[string]bool, startDir string) (*app.StructureUseCase, error) {
	return app.NewStructureUseCaseBuilder().
		WithService(d.BuildStructureService()).
		WithGraphReader(d.reader).
		WithFormatter(service.NewStructureFormatter()).
		WithConfigLoader(service.NewConfigurationLoader(explicit).WithStartDir(startDir)).
		WithOutputWriter(service.NewFileOutputWriter(io.Discard)).
		Build()
}
