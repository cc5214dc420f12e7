// Package tools implements the MCP tool handlers for the atlas server.
//
// Each tool is a struct that receives dependencies via its constructor
// and exposes a Definition for registration plus a Handle compatible
// with mcp-go's CallToolRequest signature.
//
// Design principles:
// - SRP: each file = one tool
// - DIP: tools depend on interfaces (activity.Recorder), not concretions
// - OCP: new tools are added without modifying existing ones
package tools

import (
	"fmt"
	"strings"

	"github.com/Forge-Space/atlas/internal/registry"
)

// formatProjectList renders the catalog as a markdown bullet list, one
// line per project in registration order. An empty registry renders as
// an empty string.
func formatProjectList(reg *registry.Registry) string {
	var sb strings.Builder
	for _, p := range reg.ListAll() {
		fmt.Fprintf(&sb, "- **%s**: %s\n", p.ID, p.Description)
	}
	return sb.String()
}

// unknownProjectMessage builds the lookup-miss error text. It names
// every registered identifier so the caller can self-correct without
// another discovery round trip.
func unknownProjectMessage(reg *registry.Registry, id string) string {
	valid := "(none registered)"
	if ids := reg.Identifiers(); len(ids) > 0 {
		valid = strings.Join(ids, ", ")
	}
	return fmt.Sprintf("unknown project %q. Valid projects: %s", id, valid)
}
