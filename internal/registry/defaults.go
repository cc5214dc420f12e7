package registry

// Defaults returns the built-in table of Forge-Space workspace projects.
// The list is hand-maintained: registering a new project means adding an
// entry here or to the YAML manifest. The filesystem is never scanned.
func Defaults() []Definition {
	return []Definition{
		{
			ID:          "platform-api",
			Name:        "Platform API",
			Description: "Backend REST and gRPC services powering the Forge platform",
			Path:        "platform-api/CONTEXT.md",
		},
		{
			ID:          "web-console",
			Name:        "Web Console",
			Description: "Browser dashboard for managing Forge workspaces and deployments",
			Path:        "web-console/CONTEXT.md",
		},
		{
			ID:          "edge-proxy",
			Name:        "Edge Proxy",
			Description: "Ingress gateway handling routing, authentication, and rate limits",
			Path:        "edge-proxy/CONTEXT.md",
		},
		{
			ID:          "data-pipeline",
			Name:        "Data Pipeline",
			Description: "Batch and streaming jobs feeding the analytics warehouse",
			Path:        "data-pipeline/CONTEXT.md",
		},
		{
			ID:          "infra",
			Name:        "Infrastructure",
			Description: "Terraform modules, Kubernetes manifests, and deployment playbooks",
			Path:        "infra/CONTEXT.md",
		},
	}
}
