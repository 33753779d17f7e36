package main

import (
	"log"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	chunkmcp "github.com/dgallion1/chunkdown/internal/mcp"
	"github.com/dgallion1/chunkdown/internal/version"
)

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP (Model Context Protocol) server over stdio",
		Long: `Starts an MCP JSON-RPC 2.0 server that reads from stdin and writes to stdout.
All diagnostic logs go to stderr so that stdout remains exclusively MCP protocol traffic.

Tools exposed:
  split_markdown    split markdown into structure-aware chunks
  outline_markdown  list the heading outline of a markdown document`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()

			srv := chunkmcp.NewServer(cfg.ChunkConfig(), version.Version, logger)

			// mcp-go takes a standard log.Logger for its own errors.
			errLogger := log.New(os.Stderr, "mcp: ", log.LstdFlags)

			logger.Info("mcp: chunkdown MCP server starting", "transport", "stdio")

			return mcpserver.ServeStdio(
				srv.MCPServer(),
				mcpserver.WithErrorLogger(errLogger),
			)
		},
	}
}
