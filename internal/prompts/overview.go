package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// OverviewPrompt handles the workspace-overview MCP prompt.
// It instructs the model to survey every registered project and present
// a one-screen map of the workspace.
type OverviewPrompt struct{}

// NewOverviewPrompt creates an OverviewPrompt.
func NewOverviewPrompt() *OverviewPrompt {
	return &OverviewPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *OverviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("workspace-overview",
		mcp.WithPromptDescription(
			"Survey the whole workspace. "+
				"Lists every registered project and produces a one-screen map "+
				"of what lives where, useful at the start of a session.",
		),
	)
}

// Handle processes the workspace-overview prompt request.
func (p *OverviewPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Survey the registered projects",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Give me an overview of this workspace.\n\n" +
						"Please:\n" +
						"1. Run `list_projects` to see every registered project\n" +
						"2. Present the projects as a short table: identifier, what it is\n" +
						"3. Suggest which project context to fetch first for someone new here",
				),
			},
		},
	}, nil
}
