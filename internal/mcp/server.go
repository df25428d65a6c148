// Package mcp exposes policy question answering over the Model Context
// Protocol so coding agents and assistants can query uploaded documents.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/policyrag/internal/rag"
	"github.com/ziadkadry99/policyrag/internal/session"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes policy document tools.
type Server struct {
	svc      *rag.Service
	sessions *session.DB
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(svc *rag.Service, sessions *session.DB) *Server {
	s := &Server{
		svc:      svc,
		sessions: sessions,
	}

	s.mcp = server.NewMCPServer(
		"policyrag",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(askPolicyTool, s.handleAskPolicy)
	s.mcp.AddTool(searchClausesTool, s.handleSearchClauses)
	s.mcp.AddTool(listSessionsTool, s.handleListSessions)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
