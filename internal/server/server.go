// Package server wires all MCP components and creates the server instance.
//
// This is the composition root (DIP): it creates concrete implementations
// and injects them into the tools/prompts/resources that depend on
// abstractions. No business logic lives here, only wiring.
package server

import (
	"fmt"

	"github.com/Forge-Space/atlas/internal/activity"
	"github.com/Forge-Space/atlas/internal/config"
	"github.com/Forge-Space/atlas/internal/prompts"
	"github.com/Forge-Space/atlas/internal/registry"
	"github.com/Forge-Space/atlas/internal/resources"
	"github.com/Forge-Space/atlas/internal/tools"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
//
// The returned cleanup function closes the activity store's database
// connection and must be called on shutdown (typically via defer).
// It is always non-nil and safe to call even if activity init failed.
func New(cfg config.Config, log *zap.Logger) (*server.MCPServer, func(), error) {
	if log == nil {
		log = zap.NewNop()
	}

	// --- Build the project registry ---

	defs := registry.Defaults()
	if cfg.ManifestPath != "" {
		var err error
		defs, err = registry.LoadManifest(cfg.ManifestPath)
		if err != nil {
			return nil, noop, fmt.Errorf("loading manifest: %w", err)
		}
	}

	reg, err := registry.New(cfg.RootDir, defs)
	if err != nil {
		return nil, noop, fmt.Errorf("building registry: %w", err)
	}
	log.Info("project registry built",
		zap.String("root", reg.Root()),
		zap.Int("projects", reg.Len()),
	)

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"atlas",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Activity recording ---
	//
	// Activity is an independent subsystem: if it fails to initialize,
	// the context tools keep working. We log a warning and fall back to
	// a recorder that drops everything.

	cleanup := noop
	var recorder activity.Recorder = activity.NopRecorder{}
	var actStore *activity.Store

	if cfg.DataDir == "" {
		log.Warn("activity recording disabled: no data directory")
	} else {
		actCfg := activity.DefaultConfig()
		actCfg.DataDir = cfg.DataDir
		store, actErr := activity.New(actCfg, log)
		if actErr != nil {
			log.Warn("activity recording disabled", zap.Error(actErr))
		} else {
			actStore = store
			recorder = store
			cleanup = func() {
				if err := store.Close(); err != nil {
					log.Warn("activity store close", zap.Error(err))
				}
			}
		}
	}

	// --- Register tools ---

	listTool := tools.NewListProjectsTool(reg)
	s.AddTool(listTool.Definition(), listTool.Handle)

	getTool := tools.NewGetContextTool(reg, recorder, log)
	s.AddTool(getTool.Definition(), getTool.Handle)

	statsTool := tools.NewStatsTool(actStore)
	s.AddTool(statsTool.Definition(), statsTool.Handle)

	// --- Register prompts ---

	onboarding := prompts.NewOnboardingPrompt()
	s.AddPrompt(onboarding.Definition(), onboarding.Handle)

	overview := prompts.NewOverviewPrompt()
	s.AddPrompt(overview.Definition(), overview.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(reg)
	s.AddResource(resourceHandler.IndexResource(), resourceHandler.HandleIndex)
	for _, p := range reg.ListAll() {
		s.AddResource(resourceHandler.ProjectResource(p), resourceHandler.HandleProject)
	}

	return s, cleanup, nil
}

// noop is a no-op cleanup function used as the default when activity
// recording is disabled or hasn't been initialized.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use atlas effectively.
func serverInstructions() string {
	return `You have access to atlas, a project-context MCP server.

## What atlas Does

atlas serves curated context documents for the projects in this
workspace. Each project has a hand-maintained markdown document
describing what it is, how it is structured, and what to watch out for.
Use these documents instead of re-deriving project knowledge from
scratch every session.

## WHEN TO USE atlas

You SHOULD fetch project context when:
- The user mentions a project or service by name
- You are about to modify code in a project you have not read about this session
- The user asks how parts of the workspace fit together
- You need conventions, ownership, or deployment facts for a project

## Tools

- list_projects: Lists every project with its identifier and a short
  description. Call this first to discover valid identifiers.
- get_project_context: Fetches one project's full context document.
  Pass the identifier exactly as shown by list_projects.
- context_stats: Shows which contexts have been fetched and how often.
  Useful for checking what this workspace actually relies on.

## Resources

Every project is also exposed as an MCP resource at context://<id>,
plus an index at atlas://projects. Hosts that support resource
attachment can pin these instead of calling tools.

## Prompts

- workspace-overview: Survey every registered project.
- project-onboarding: Load one project's context and produce a briefing.

## Important Rules

- Identifiers are exact and case-sensitive; never guess. When a fetch
  fails with an unknown identifier, the error lists every valid one.
- Context documents are the source of truth for project facts. Quote
  them rather than inventing details.
- Documents can change between calls; re-fetch instead of relying on an
  old copy when accuracy matters.`
}
