package main

import (
	"fmt"
	"log/slog"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	flag "github.com/spf13/pflag"

	"github.com/ludo-technologies/dexstruct/internal/version"
	"github.com/ludo-technologies/dexstruct/mcp"
)

const serverName = "dexstruct"

func main() {
	configPath := flag.StringP("config", "c", "", "Configuration file path")
	verbose := flag.BoolP("verbose", "v", false, "Enable debug logging")
	flag.Parse()

	// MCP uses stdout for JSON-RPC
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	server := mcpserver.NewMCPServer(
		serverName,
		version.Short(),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
	)

	mcp.RegisterTools(server, mcp.NewHandlerSet(mcp.NewDependencies(*configPath, logger)))

	logger.Info("starting MCP server",
		slog.String("name", serverName),
		slog.String("version", version.Short()),
		slog.Any("tools", []string{"structure_graph", "summarize_regions"}))

	if err := mcpserver.ServeStdio(server); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
