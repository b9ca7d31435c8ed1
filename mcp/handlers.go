package mcp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ludo-technologies/dexstruct/domain"
	"github.com/ludo-technologies/dexstruct/internal/version"
	"github.com/ludo-technologies/dexstruct/service"
)

// inlineSource names documents passed through the graph argument
const inlineSource = "<inline>"

// HandlerSet exposes MCP tool handlers with shared dependencies.
type HandlerSet struct {
	deps *Dependencies
}

// NewHandlerSet constructs a handler set.
func NewHandlerSet(deps *Dependencies) *HandlerSet {
	if deps == nil {
		deps = NewDependencies("", nil)
	}
	return &HandlerSet{deps: deps}
}

// HandleStructureGraph handles the structure_graph tool
func (h *HandlerSet) HandleStructureGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	format := domain.OutputFormatJSON
	if f, ok := args["format"].(string); ok && f != "" {
		switch domain.OutputFormat(f) {
		case domain.OutputFormatJSON, domain.OutputFormatText:
			format = domain.OutputFormat(f)
		default:
			return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q: use json or text", f)), nil
		}
	}

	req, explicit := requestFromArgs(args)
	req.OutputFormat = format

	if graph, ok := args["graph"].(string); ok && graph != "" {
		out, err := h.structureInline(ctx, graph, req, explicit)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return mcp.NewToolResultError("either path or graph must be provided"), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", path)), nil
	}

	var buf bytes.Buffer
	req.OutputWriter = &buf
	if _, err := h.structurePath(ctx, path, req, explicit); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("structuring failed: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

// HandleSummarizeRegions handles the summarize_regions tool
func (h *HandlerSet) HandleSummarizeRegions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return mcp.NewToolResultError("path parameter is required and must be a string"), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", path)), nil
	}

	req, explicit := requestFromArgs(args)
	req.OutputFormat = domain.OutputFormatJSON
	req.OutputWriter = &bytes.Buffer{}

	resp, err := h.structurePath(ctx, path, req, explicit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("structuring failed: %v", err)), nil
	}

	text, err := service.EncodeJSON(formatRegionSummary(resp))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

// requestFromArgs maps optional tool arguments onto a request and records
// which ones were given, so unset ones fall back to the configuration
func requestFromArgs(args map[string]interface{}) (domain.StructureRequest, map[string]bool) {
	explicit := map[string]bool{"format": true}
	var req domain.StructureRequest

	if v, ok := args["detect_loops"].(bool); ok {
		req.DetectLoops = domain.BoolPtr(v)
		explicit["detect-loops"] = true
	}
	if v, ok := args["indent"].(string); ok && v != "" {
		req.Indent = v
		explicit["indent"] = true
	}
	return req, explicit
}

func (h *HandlerSet) structurePath(ctx context.Context, path string, req domain.StructureRequest, explicit map[string]bool) (*domain.StructureResponse, error) {
	startDir := path
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		startDir = filepath.Dir(path)
	}

	uc, err := h.deps.BuildStructureUseCase(explicit, startDir)
	if err != nil {
		return nil, err
	}

	req.Paths = []string{path}
	req.ConfigPath = h.deps.ConfigPath()

	h.deps.Logger().Debug("structure_graph", slog.String("path", path))
	return uc.Execute(ctx, req)
}

func (h *HandlerSet) structureInline(ctx context.Context, graph string, req domain.StructureRequest, explicit map[string]bool) (string, error) {
	doc, err := service.DecodeDocument([]byte(graph), service.DocumentJSON)
	if err != nil {
		return "", fmt.Errorf("invalid graph document: %w", err)
	}

	loader := service.NewConfigurationLoader(explicit)
	base := loader.LoadDefaultConfig()
	if path := h.deps.ConfigPath(); path != "" {
		if base, err = loader.LoadConfig(path); err != nil {
			return "", err
		}
	}
	merged := loader.MergeConfig(base, &req)

	fs, err := h.deps.BuildStructureService().StructureDocument(ctx, inlineSource, doc, *merged)
	if err != nil {
		return "", err
	}
	files := []domain.FileStructure{*fs}
	resp := &domain.StructureResponse{
		Files:       files,
		Summary:     service.Summarize(files),
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.Version,
	}
	return service.NewStructureFormatter().Format(resp, merged.OutputFormat)
}

func formatRegionSummary(resp *domain.StructureResponse) map[string]interface{} {
	failures := []map[string]interface{}{}
	methods := []map[string]interface{}{}
	for _, file := range resp.Files {
		for _, m := range file.Methods {
			if m.Failed() {
				failures = append(failures, map[string]interface{}{
					"file":   file.FilePath,
					"method": m.Name,
					"error":  m.Error,
				})
				continue
			}
			methods = append(methods, map[string]interface{}{
				"file":     file.FilePath,
				"method":   m.Name,
				"stats":    m.Stats,
				"warnings": len(m.Diagnostics),
				"digest":   m.Digest,
			})
		}
	}

	return map[string]interface{}{
		"summary":  resp.Summary,
		"methods":  methods,
		"failures": failures,
		"errors":   resp.Errors,
	}
}
