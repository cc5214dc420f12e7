// Package resources implements the MCP resource handlers for the atlas
// server.
//
// Resources provide read-only data that the host can consume for
// context. They use URI-based addressing (context://..., atlas://...)
// following MCP conventions. Each registered project is exposed as its
// own resource, plus one index resource for the whole catalog.
package resources

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Forge-Space/atlas/internal/registry"
	"github.com/mark3labs/mcp-go/mcp"
)

// IndexURI addresses the catalog resource listing every project.
const IndexURI = "atlas://projects"

// Handler manages atlas resource endpoints.
type Handler struct {
	reg *registry.Registry
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(reg *registry.Registry) *Handler {
	return &Handler{reg: reg}
}

// IndexResource returns the MCP resource definition for the catalog.
func (h *Handler) IndexResource() mcp.Resource {
	return mcp.NewResource(
		IndexURI,
		"Project Catalog",
		mcp.WithResourceDescription("Every project this server can describe, one line per identifier"),
		mcp.WithMIMEType("text/markdown"),
	)
}

// HandleIndex renders the catalog as a markdown bullet list in
// registration order. It reads no backing documents.
func (h *Handler) HandleIndex(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var sb strings.Builder
	for _, p := range h.reg.ListAll() {
		fmt.Fprintf(&sb, "- **%s**: %s\n", p.ID, p.Description)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     sb.String(),
		},
	}, nil
}

// ProjectResource returns the MCP resource definition for one project's
// context document.
func (h *Handler) ProjectResource(p registry.Project) mcp.Resource {
	name := p.Name
	if name == "" {
		name = p.ID
	}
	return mcp.NewResource(
		p.URI,
		name,
		mcp.WithResourceDescription(p.Description),
		mcp.WithMIMEType(p.MIMEType),
	)
}

// HandleProject serves a project's backing document verbatim. The
// project is resolved from the requested URI by stripping the scheme.
func (h *Handler) HandleProject(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	id := strings.TrimPrefix(uri, registry.Scheme)

	entry, ok := h.reg.Find(id)
	if !ok {
		return errorResource(uri, fmt.Sprintf("unknown project resource %s", uri)), nil
	}

	data, err := os.ReadFile(entry.Path)
	if err != nil {
		return errorResource(uri, fmt.Sprintf("reading context for project %q: %v", id, err)), nil
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: entry.MIMEType,
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
