package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/mediacat-mcp/internal/catalog"
	"github.com/dshills/mediacat-mcp/internal/logger"
)

const (
	// ServerName is the MCP server name
	ServerName = "mediacat-mcp"
)

// ServerVersion is reported in the MCP initialize handshake. The CLI sets
// it from the build version.
var ServerVersion = "dev"

var log = logger.WithName("mcp")

// Server wraps the MCP server with the catalog it exposes
type Server struct {
	mcp     *server.MCPServer
	catalog *catalog.Catalog
}

// NewServer creates a new MCP server instance over cat
func NewServer(cat *catalog.Catalog) (*Server, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog is required")
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcp:     mcpServer,
		catalog: cat,
	}

	// Register tools
	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown. The
// catalog is closed when Serve returns.
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.catalog.Close() }()

	log.WithField("version", ServerVersion).Info("serving MCP over stdio")
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(addItemsTool(), s.instrument(ToolAddItems, s.handleAddItems))
	s.mcp.AddTool(deleteItemsTool(), s.instrument(ToolDeleteItems, s.handleDeleteItems))
	s.mcp.AddTool(searchItemsTool(), s.instrument(ToolSearchItems, s.handleSearchItems))
	s.mcp.AddTool(getItemDetailsTool(), s.instrument(ToolGetItemDetails, s.handleGetItemDetails))
	s.mcp.AddTool(executeRawQueryTool(), s.instrument(ToolExecuteRawQuery, s.handleExecuteRawQuery))

	return nil
}
