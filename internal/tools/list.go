package tools

import (
	"context"

	"github.com/Forge-Space/atlas/internal/registry"
	"github.com/mark3labs/mcp-go/mcp"
)

// ListProjectsTool handles the list_projects MCP tool.
// It renders the project catalog so a caller can discover valid
// identifiers before requesting full context.
type ListProjectsTool struct {
	reg *registry.Registry
}

// NewListProjectsTool creates a ListProjectsTool with its dependencies.
func NewListProjectsTool(reg *registry.Registry) *ListProjectsTool {
	return &ListProjectsTool{reg: reg}
}

// Definition returns the MCP tool definition for registration.
func (t *ListProjectsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_projects",
		mcp.WithDescription(
			"List every project this server can describe. "+
				"Returns one line per project with its identifier and a short description. "+
				"Call this first to discover valid identifiers for get_project_context.",
		),
	)
}

// Handle processes the list_projects tool call. It takes no arguments,
// reads nothing outside the in-memory catalog, and cannot fail.
func (t *ListProjectsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(formatProjectList(t.reg)), nil
}
