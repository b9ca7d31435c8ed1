package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all dexstruct MCP tools with the server
func RegisterTools(s *server.MCPServer, h *HandlerSet) {
	s.AddTool(mcp.NewTool("structure_graph",
		mcp.WithDescription("Structure decompiled method graphs into nested if/else, switch, loop and try/catch pseudo-source"),
		mcp.WithString("path",
			mcp.Description("Graph document or directory of documents (JSON, YAML or msgpack)")),
		mcp.WithString("graph",
			mcp.Description("Inline JSON graph document; used instead of path")),
		mcp.WithString("format",
			mcp.Enum("json", "text"),
			mcp.Description("Result format: json or text (default: json)")),
		mcp.WithBoolean("detect_loops",
			mcp.Description("Tag loop headers the graph producer left untagged (default: from config)")),
		mcp.WithString("indent",
			mcp.Description("Indentation unit of printed source (default: four spaces)")),
	), h.HandleStructureGraph)

	s.AddTool(mcp.NewTool("summarize_regions",
		mcp.WithDescription("Count blocks, loops, ifs, switches and try regions of method graphs and list methods that fail to structure"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Graph document or directory of documents")),
		mcp.WithBoolean("detect_loops",
			mcp.Description("Tag loop headers the graph producer left untagged (default: from config)")),
	), h.HandleSummarizeRegions)
}
