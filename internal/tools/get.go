package tools

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Forge-Space/atlas/internal/activity"
	"github.com/Forge-Space/atlas/internal/registry"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// GetContextTool handles the get_project_context MCP tool.
// It resolves a project identifier to its backing document and returns
// the content verbatim. Every call reads from disk again, so edits to
// a document are visible on the next fetch without a server restart.
type GetContextTool struct {
	reg      *registry.Registry
	recorder activity.Recorder
	log      *zap.Logger
}

// NewGetContextTool creates a GetContextTool with its dependencies.
// A nil recorder disables fetch recording and a nil logger is replaced
// with a no-op logger.
func NewGetContextTool(reg *registry.Registry, recorder activity.Recorder, log *zap.Logger) *GetContextTool {
	if recorder == nil {
		recorder = activity.NopRecorder{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GetContextTool{reg: reg, recorder: recorder, log: log}
}

// Definition returns the MCP tool definition for registration.
func (t *GetContextTool) Definition() mcp.Tool {
	return mcp.NewTool("get_project_context",
		mcp.WithDescription(
			"Fetch the full context document for one project. "+
				"Returns the project's markdown context exactly as stored on disk. "+
				"Use list_projects first if you are unsure which identifiers exist.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project identifier as shown by list_projects, e.g. 'platform-api'."),
		),
	)
}

// Handle processes the get_project_context tool call. The identifier is
// validated before any catalog lookup or filesystem access. Recording
// happens after the outcome is decided and never changes the result.
func (t *GetContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project := req.GetString("project", "")
	if project == "" {
		return mcp.NewToolResultError("'project' is required"), nil
	}

	entry, ok := t.reg.Find(project)
	if !ok {
		t.recorder.Record(activity.Event{Project: project, Outcome: activity.OutcomeNotFound})
		return mcp.NewToolResultError(unknownProjectMessage(t.reg, project)), nil
	}

	start := time.Now()
	data, err := os.ReadFile(entry.Path)
	if err != nil {
		t.log.Warn("context read failed",
			zap.String("project", project),
			zap.String("path", entry.Path),
			zap.Error(err),
		)
		t.recorder.Record(activity.Event{Project: project, Outcome: activity.OutcomeReadError})
		return mcp.NewToolResultError(fmt.Sprintf("reading context for project %q: %v", project, err)), nil
	}

	t.recorder.Record(activity.Event{
		Project:   project,
		Outcome:   activity.OutcomeOK,
		Bytes:     len(data),
		ElapsedMs: time.Since(start).Milliseconds(),
	})

	return mcp.NewToolResultText(string(data)), nil
}
