package memorymcp

import (
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/memory"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer builds an MCP server with every memory tool registered.
func NewServer(client memory.Client, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"lanonasis-memory",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions("Tools for the LanOnasis memory service. Search before creating to avoid duplicates."),
	)

	tools := NewTools(client)
	s.AddTool(tools.CreateDefinition(), tools.HandleCreate)
	s.AddTool(tools.SearchDefinition(), tools.HandleSearch)
	s.AddTool(tools.ListDefinition(), tools.HandleList)
	s.AddTool(tools.GetDefinition(), tools.HandleGet)
	s.AddTool(tools.UpdateDefinition(), tools.HandleUpdate)
	s.AddTool(tools.DeleteDefinition(), tools.HandleDelete)

	return s
}

// ServeStdio runs the server on stdin/stdout until the peer disconnects.
func ServeStdio(client memory.Client, version string) error {
	return server.ServeStdio(NewServer(client, version))
}
