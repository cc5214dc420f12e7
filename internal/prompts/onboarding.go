// Package prompts implements the MCP prompt handlers for the atlas
// server.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// OnboardingPrompt handles the project-onboarding MCP prompt.
// It instructs the model to load one project's context document and
// distill it into a short briefing.
type OnboardingPrompt struct{}

// NewOnboardingPrompt creates an OnboardingPrompt.
func NewOnboardingPrompt() *OnboardingPrompt {
	return &OnboardingPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *OnboardingPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("project-onboarding",
		mcp.WithPromptDescription(
			"Get up to speed on one project. "+
				"Loads the project's context document and produces a short briefing: "+
				"what it is, how it is structured, and where to start reading.",
		),
		mcp.WithArgument("project",
			mcp.ArgumentDescription("Project identifier as shown by list_projects"),
			mcp.RequiredArgument(),
		),
	)
}

// Handle processes the project-onboarding prompt request.
func (p *OnboardingPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	project := ""
	if args := req.Params.Arguments; args != nil {
		project = args["project"]
	}
	if project == "" {
		return nil, fmt.Errorf("'project' argument is required")
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Onboard onto project: %s", project),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I need to get up to speed on the '%s' project.\n\n"+
						"Please:\n"+
						"1. Run `get_project_context` with project='%s'\n"+
						"2. Summarize what the project does in two or three sentences\n"+
						"3. List the main components or directories it describes\n"+
						"4. Point out anything the document flags as tricky or in flux",
					project, project,
				)),
			},
		},
	}, nil
}
