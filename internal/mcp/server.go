// Package mcp exposes the splitter as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/dgallion1/chunkdown/internal/chunkdown"
	"github.com/dgallion1/chunkdown/internal/mdast"
	"github.com/dgallion1/chunkdown/internal/section"
)

// Server wraps an MCPServer with the default chunking settings.
type Server struct {
	mcp      *mcpserver.MCPServer
	defaults chunkdown.Config
	logger   *slog.Logger
}

// NewServer creates a new MCP server. Tool arguments that are omitted fall
// back to defaults.
func NewServer(defaults chunkdown.Config, version string, logger *slog.Logger) *Server {
	s := &Server{
		defaults: defaults,
		logger:   logger,
	}

	mcpSrv := mcpserver.NewMCPServer(
		"chunkdown",
		version,
		mcpserver.WithToolCapabilities(true),
	)

	mcpSrv.AddTool(buildSplitTool(), s.handleSplit)
	mcpSrv.AddTool(buildOutlineTool(), s.handleOutline)

	s.mcp = mcpSrv
	return s
}

// MCPServer returns the underlying mcp-go MCPServer for use with ServeStdio.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// HandleSplit is the exported handler for the "split_markdown" tool.
// It is exposed for direct testing without the mcp-go transport layer.
func (s *Server) HandleSplit(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleSplit(ctx, req)
}

// HandleOutline is the exported handler for the "outline_markdown" tool.
func (s *Server) HandleOutline(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleOutline(ctx, req)
}

// toolResultJSON marshals v to JSON and returns it as a tool text result.
func toolResultJSON(v any) (*mcpgo.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("mcp: marshaling result: %w", err)
	}
	return mcpgo.NewToolResultText(string(b)), nil
}

// --- tool definitions ---

func buildSplitTool() mcpgo.Tool {
	return mcpgo.NewTool("split_markdown",
		mcpgo.WithDescription("Split markdown into chunks that follow its structure. Sections, lists, code blocks and tables stay whole unless they exceed chunk_size * max_overflow_ratio."),
		mcpgo.WithString("text",
			mcpgo.Required(),
			mcpgo.Description("The markdown to split"),
		),
		mcpgo.WithNumber("chunk_size",
			mcpgo.Description("Target chunk size in characters"),
		),
		mcpgo.WithNumber("max_overflow_ratio",
			mcpgo.Description("How far over chunk_size an atomic unit may go before it is cut (>= 1.0)"),
		),
		mcpgo.WithString("fallback",
			mcpgo.Description("How oversized leaves are cut: boundary (sentences and lines, default) or raw"),
		),
	)
}

func buildOutlineTool() mcpgo.Tool {
	return mcpgo.NewTool("outline_markdown",
		mcpgo.WithDescription("List the heading hierarchy of a markdown document."),
		mcpgo.WithString("text",
			mcpgo.Required(),
			mcpgo.Description("The markdown to outline"),
		),
	)
}

// --- tool handlers ---

func (s *Server) handleSplit(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	text := req.GetString("text", "")

	cfg := s.defaults
	cfg.ChunkSize = req.GetInt("chunk_size", cfg.ChunkSize)
	cfg.MaxOverflowRatio = req.GetFloat("max_overflow_ratio", cfg.MaxOverflowRatio)
	if fb := req.GetString("fallback", ""); fb != "" {
		cfg.Fallback = chunkdown.Fallback(fb)
	}

	chunks, err := chunkdown.Split(text, cfg)
	if err != nil {
		if errors.Is(err, chunkdown.ErrConfig) {
			return mcpgo.NewToolResultErrorf("invalid arguments: %s", err.Error()), nil
		}
		return mcpgo.NewToolResultErrorf("split failed: %s", err.Error()), nil
	}

	if chunks == nil {
		chunks = []chunkdown.Chunk{}
	}

	s.logger.Debug("mcp: split_markdown", "bytes", len(text), "chunks", len(chunks), "chunk_size", cfg.ChunkSize)

	return toolResultJSON(map[string]any{
		"chunks":      chunks,
		"chunk_count": len(chunks),
	})
}

func (s *Server) handleOutline(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	text := req.GetString("text", "")
	if strings.TrimSpace(text) == "" {
		return mcpgo.NewToolResultError("text is required and must not be empty"), nil
	}

	blocks, err := mdast.Parse(text)
	if err != nil {
		return mcpgo.NewToolResultErrorf("parse failed: %s", err.Error()), nil
	}
	lines := section.Outline(section.Sectionize(blocks))
	if lines == nil {
		lines = []string{}
	}
	return toolResultJSON(map[string]any{"outline": lines})
}
