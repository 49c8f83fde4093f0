package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/semantiq/semantiq/internal/engine"
	"github.com/semantiq/semantiq/internal/store"
)

const (
	// ServerName is the MCP server name.
	ServerName = "semantiq"
	// ServerVersion is the protocol-visible server version.
	ServerVersion = "1.0.0"
)

// Server exposes the retrieval engine's four operations over MCP stdio.
type Server struct {
	mcp    *server.MCPServer
	engine *engine.Engine
	store  *store.Store
}

// NewServer wires the MCP server around an engine.
func NewServer(eng *engine.Engine, st *store.Store) *Server {
	s := &Server{
		mcp:    server.NewMCPServer(ServerName, ServerVersion),
		engine: eng,
		store:  st,
	}
	s.registerTools()
	return s
}

// Serve runs the stdio transport until the client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(searchTool(), s.handleSearch)
	s.mcp.AddTool(findRefsTool(), s.handleFindRefs)
	s.mcp.AddTool(depsTool(), s.handleDeps)
	s.mcp.AddTool(explainTool(), s.handleExplain)
}
