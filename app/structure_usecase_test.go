package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/dexstruct/domain"
)

type mockStructureService struct {
	mock.Mock
}

func (m *mockStructureService) Structure(ctx context.Context, req domain.StructureRequest) (*domain.StructureResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StructureResponse), args.Error(1)
}

func (m *mockStructureService) StructureDocument(ctx context.Context, path string, doc *domain.GraphDocument, req domain.StructureRequest) (*domain.FileStructure, error) {
	args := m.Called(ctx, path, doc, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FileStructure), args.Error(1)
}

func (m *mockStructureService) StructureMethod(ctx context.Context, method domain.MethodGraph, req domain.StructureRequest) domain.MethodResult {
	args := m.Called(ctx, method, req)
	return args.Get(0).(domain.MethodResult)
}

type mockGraphReader struct {
	mock.Mock
}

func (m *mockGraphReader) CollectGraphFiles(paths []string, recursive bool, include, exclude []string) ([]string, error) {
	args := m.Called(paths, recursive, include, exclude)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockGraphReader) ReadDocument(path string) (*domain.GraphDocument, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GraphDocument), args.Error(1)
}

func (m *mockGraphReader) IsGraphFile(path string) bool {
	return m.Called(path).Bool(0)
}

func (m *mockGraphReader) FileExists(path string) (bool, error) {
	args := m.Called(path)
	return args.Bool(0), args.Error(1)
}

type mockStructureFormatter struct {
	mock.Mock
}

func (m *mockStructureFormatter) Format(response *domain.StructureResponse, format domain.OutputFormat) (string, error) {
	args := m.Called(response, format)
	return args.String(0), args.Error(1)
}

func (m *mockStructureFormatter) Write(response *domain.StructureResponse, format domain.OutputFormat, writer io.Writer) error {
	args := m.Called(response, format, writer)
	return args.Error(0)
}

type mockConfigLoader struct {
	mock.Mock
}

func (m *mockConfigLoader) LoadConfig(path string) (*domain.StructureRequest, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StructureRequest), args.Error(1)
}

func (m *mockConfigLoader) LoadDefaultConfig() *domain.StructureRequest {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.StructureRequest)
}

func (m *mockConfigLoader) MergeConfig(base, override *domain.StructureRequest) *domain.StructureRequest {
	args := m.Called(base, override)
	return args.Get(0).(*domain.StructureRequest)
}

// passthroughWriter invokes the write callback on the given writer
type passthroughWriter struct {
	mock.Mock
}

func (m *passthroughWriter) Write(writer io.Writer, outputPath string, format domain.OutputFormat, writeFunc func(io.Writer) error) error {
	args := m.Called(writer, outputPath, format)
	if err := args.Error(0); err != nil {
		return err
	}
	return writeFunc(writer)
}

type structureMocks struct {
	service   *mockStructureService
	reader    *mockGraphReader
	formatter *mockStructureFormatter
	config    *mockConfigLoader
	output    *passthroughWriter
}

func setupStructureUseCase(withConfig bool) (*StructureUseCase, *structureMocks) {
	m := &structureMocks{
		service:   &mockStructureService{},
		reader:    &mockGraphReader{},
		formatter: &mockStructureFormatter{},
		config:    &mockConfigLoader{},
		output:    &passthroughWriter{},
	}
	var loader domain.StructureConfigurationLoader
	if withConfig {
		loader = m.config
	}
	return NewStructureUseCase(m.service, m.reader, m.formatter, loader, m.output), m
}

func validStructureRequest(out io.Writer) domain.StructureRequest {
	req := *domain.DefaultStructureRequest()
	req.Paths = []string{"graphs"}
	req.OutputWriter = out
	return req
}

func okResponse() *domain.StructureResponse {
	return &domain.StructureResponse{
		Files: []domain.FileStructure{{
			FilePath: "graphs/a.json",
			Methods:  []domain.MethodResult{{Name: "m", Source: "m {\n    return;\n}\n"}},
		}},
		Summary: domain.StructureSummary{TotalFiles: 1, TotalMethods: 1, StructuredMethods: 1},
	}
}

func TestStructureUseCase_Execute_Success(t *testing.T) {
	uc, m := setupStructureUseCase(false)
	var out bytes.Buffer
	req := validStructureRequest(&out)
	resp := okResponse()

	m.reader.On("CollectGraphFiles", req.Paths, true, req.IncludePatterns, req.ExcludePatterns).
		Return([]string{"graphs/a.json"}, nil)
	m.service.On("Structure", mock.Anything, mock.MatchedBy(func(r domain.StructureRequest) bool {
		return len(r.Paths) == 1 && r.Paths[0] == "graphs/a.json"
	})).Return(resp, nil)
	m.output.On("Write", &out, "", domain.OutputFormatText).Return(nil)
	m.formatter.On("Write", resp, domain.OutputFormatText, &out).Return(nil)

	got, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Same(t, resp, got)

	m.reader.AssertExpectations(t)
	m.service.AssertExpectations(t)
	m.output.AssertExpectations(t)
	m.formatter.AssertExpectations(t)
}

func TestStructureUseCase_Execute_MergesConfig(t *testing.T) {
	uc, m := setupStructureUseCase(true)
	var out bytes.Buffer
	req := validStructureRequest(&out)
	req.ConfigPath = "custom.toml"

	fromFile := domain.DefaultStructureRequest()
	fromFile.OutputFormat = domain.OutputFormatJSON
	merged := validStructureRequest(&out)
	merged.OutputFormat = domain.OutputFormatJSON
	resp := okResponse()

	m.config.On("LoadConfig", "custom.toml").Return(fromFile, nil)
	m.config.On("MergeConfig", fromFile, mock.Anything).Return(&merged)
	m.reader.On("CollectGraphFiles", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]string{"graphs/a.json"}, nil)
	m.service.On("Structure", mock.Anything, mock.MatchedBy(func(r domain.StructureRequest) bool {
		return r.OutputFormat == domain.OutputFormatJSON
	})).Return(resp, nil)
	m.output.On("Write", &out, "", domain.OutputFormatJSON).Return(nil)
	m.formatter.On("Write", resp, domain.OutputFormatJSON, &out).Return(nil)

	_, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	m.config.AssertExpectations(t)
	m.formatter.AssertExpectations(t)
}

func TestStructureUseCase_Execute_DefaultConfig(t *testing.T) {
	uc, m := setupStructureUseCase(true)
	req := validStructureRequest(io.Discard)
	resp := okResponse()

	m.config.On("LoadDefaultConfig").Return(nil)
	m.reader.On("CollectGraphFiles", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]string{"graphs/a.json"}, nil)
	m.service.On("Structure", mock.Anything, mock.Anything).Return(resp, nil)
	m.output.On("Write", mock.Anything, "", domain.OutputFormatText).Return(nil)
	m.formatter.On("Write", resp, domain.OutputFormatText, mock.Anything).Return(nil)

	_, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	m.config.AssertNotCalled(t, "MergeConfig", mock.Anything, mock.Anything)
}

func TestStructureUseCase_Execute_Errors(t *testing.T) {
	t.Run("no paths", func(t *testing.T) {
		uc, _ := setupStructureUseCase(false)
		_, err := uc.Execute(context.Background(), domain.StructureRequest{})
		require.Error(t, err)
		assert.Equal(t, domain.ErrCodeInvalidInput, domain.ErrorCode(err))
	})

	t.Run("invalid format", func(t *testing.T) {
		uc, _ := setupStructureUseCase(false)
		req := validStructureRequest(io.Discard)
		req.OutputFormat = "html"
		_, err := uc.Execute(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, domain.ErrCodeUnsupportedFormat, domain.ErrorCode(err))
	})

	t.Run("config load failure", func(t *testing.T) {
		uc, m := setupStructureUseCase(true)
		req := validStructureRequest(io.Discard)
		req.ConfigPath = "missing.toml"
		m.config.On("LoadConfig", "missing.toml").Return(nil, errors.New("no such file"))

		_, err := uc.Execute(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, domain.ErrCodeConfigError, domain.ErrorCode(err))
	})

	t.Run("no graph files", func(t *testing.T) {
		uc, m := setupStructureUseCase(false)
		m.reader.On("CollectGraphFiles", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]string{}, nil)

		_, err := uc.Execute(context.Background(), validStructureRequest(io.Discard))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no graph files found")
	})

	t.Run("service failure", func(t *testing.T) {
		uc, m := setupStructureUseCase(false)
		m.reader.On("CollectGraphFiles", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]string{"graphs/a.json"}, nil)
		m.service.On("Structure", mock.Anything, mock.Anything).Return(nil, context.DeadlineExceeded)

		_, err := uc.Execute(context.Background(), validStructureRequest(io.Discard))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		m.output.AssertNotCalled(t, "Write", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("output failure", func(t *testing.T) {
		uc, m := setupStructureUseCase(false)
		m.reader.On("CollectGraphFiles", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]string{"graphs/a.json"}, nil)
		m.service.On("Structure", mock.Anything, mock.Anything).Return(okResponse(), nil)
		m.output.On("Write", mock.Anything, mock.Anything, mock.Anything).
			Return(domain.NewOutputError("disk full", nil))

		resp, err := uc.Execute(context.Background(), validStructureRequest(io.Discard))
		require.Error(t, err)
		assert.NotNil(t, resp)
		assert.Equal(t, domain.ErrCodeOutputError, domain.ErrorCode(err))
	})
}

func TestStructureUseCase_Execute_FailOnError(t *testing.T) {
	failing := okResponse()
	failing.Files[0].Methods = append(failing.Files[0].Methods, domain.MethodResult{Name: "bad", Error: "boom"})
	failing.Summary.TotalMethods = 2
	failing.Summary.FailedMethods = 1

	for _, failOnError := range []bool{false, true} {
		uc, m := setupStructureUseCase(false)
		req := validStructureRequest(io.Discard)
		req.FailOnError = failOnError

		m.reader.On("CollectGraphFiles", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]string{"graphs/a.json"}, nil)
		m.service.On("Structure", mock.Anything, mock.Anything).Return(failing, nil)
		m.output.On("Write", mock.Anything, "", domain.OutputFormatText).Return(nil)
		m.formatter.On("Write", failing, domain.OutputFormatText, mock.Anything).Return(nil)

		resp, err := uc.Execute(context.Background(), req)
		assert.Same(t, failing, resp)
		if failOnError {
			require.Error(t, err)
			assert.Contains(t, err.Error(), "1 of 2 methods failed")
		} else {
			assert.NoError(t, err)
		}
	}
}

func TestStructureUseCaseBuilder(t *testing.T) {
	_, err := NewStructureUseCaseBuilder().Build()
	assert.ErrorContains(t, err, "structure service is required")

	_, err = NewStructureUseCaseBuilder().
		WithService(&mockStructureService{}).
		WithGraphReader(&mockGraphReader{}).
		WithFormatter(&mockStructureFormatter{}).
		Build()
	assert.ErrorContains(t, err, "report writer is required")

	uc, err := NewStructureUseCaseBuilder().
		WithService(&mockStructureService{}).
		WithGraphReader(&mockGraphReader{}).
		WithFormatter(&mockStructureFormatter{}).
		WithConfigLoader(&mockConfigLoader{}).
		WithOutputWriter(&passthroughWriter{}).
		Build()
	require.NoError(t, err)
	assert.NotNil(t, uc)
}
