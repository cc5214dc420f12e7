package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the on-disk YAML format for a project list. It replaces
// the built-in Defaults table when a manifest path is configured:
//
//	projects:
//	  - id: platform-api
//	    name: Platform API
//	    description: Backend services powering the Forge platform
//	    path: platform-api/CONTEXT.md
type Manifest struct {
	Projects []Definition `yaml:"projects"`
}

// LoadManifest reads and validates a YAML project manifest. Paths are
// kept relative; resolution against the root happens in New, where the
// same escape checks apply to manifest entries and built-in defaults.
func LoadManifest(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	if len(m.Projects) == 0 {
		return nil, fmt.Errorf("manifest %s lists no projects", path)
	}
	for i, d := range m.Projects {
		if d.ID == "" {
			return nil, fmt.Errorf("manifest %s: project %d has no id", path, i+1)
		}
		if d.Path == "" {
			return nil, fmt.Errorf("manifest %s: project %q has no path", path, d.ID)
		}
	}

	return m.Projects, nil
}
