package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/Forge-Space/atlas/internal/activity"
	"github.com/mark3labs/mcp-go/mcp"
)

// StatsTool handles the context_stats MCP tool.
type StatsTool struct {
	store *activity.Store
}

// NewStatsTool creates a StatsTool with the given activity store.
// The store may be nil when recording is disabled.
func NewStatsTool(store *activity.Store) *StatsTool {
	return &StatsTool{store: store}
}

// Definition returns the MCP tool definition for context_stats.
func (t *StatsTool) Definition() mcp.Tool {
	return mcp.NewTool("context_stats",
		mcp.WithDescription(
			"Show context fetch statistics: totals per project, failure counts, and recent activity.",
		),
	)
}

// Handle processes the context_stats tool call.
func (t *StatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.store == nil {
		return mcp.NewToolResultText("Activity recording is disabled, so no statistics are available."), nil
	}

	sum, err := t.store.Summary()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get stats: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString("## Context Fetch Statistics\n\n")
	sb.WriteString(fmt.Sprintf("- **Total fetches**: %d\n", sum.TotalFetches))
	sb.WriteString(fmt.Sprintf("- **Failures**: %d\n", sum.TotalFailures))

	if len(sum.Projects) > 0 {
		sb.WriteString("\n### Per Project\n\n")
		for _, p := range sum.Projects {
			sb.WriteString(fmt.Sprintf("- **%s**: %d fetches", p.Project, p.Fetches))
			if p.Failures > 0 {
				sb.WriteString(fmt.Sprintf(" (%d failed)", p.Failures))
			}
			if p.LastFetched != "" {
				sb.WriteString(fmt.Sprintf(", last %s", p.LastFetched))
			}
			sb.WriteString("\n")
		}
	}

	recent, err := t.store.Recent(5)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get recent activity: %v", err)), nil
	}
	if len(recent) > 0 {
		sb.WriteString("\n### Recent\n\n")
		for _, e := range recent {
			sb.WriteString(fmt.Sprintf("- %s: %s (%s)\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Project, e.Outcome))
		}
	}

	return mcp.NewToolResultText(sb.String()), nil
}
