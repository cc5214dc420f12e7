// Package registry holds the authoritative table of project context
// documents the server can list and fetch.
//
// The registry is built once at startup from explicit configuration
// (a root directory plus a list of project definitions) and is immutable
// afterwards: lookups are pure in-memory reads. The backing documents
// themselves are read on demand by the callers, never cached here.
package registry

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Scheme prefixes every project URI (e.g. "context://platform-api").
const Scheme = "context://"

// DefaultMIMEType is the declared content type for backing documents.
// Every registered document is markdown unless a definition says otherwise.
const DefaultMIMEType = "text/markdown"

// Definition describes one project to register, before path resolution.
// Definitions come from the built-in Defaults table or a YAML manifest.
type Definition struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Path        string `yaml:"path"`
	MIMEType    string `yaml:"media_type,omitempty"`
}

// Project is one resolved registry entry: an external context document
// exposed under a stable identifier.
type Project struct {
	// ID is the public lookup key, unique across the registry.
	ID string
	// URI is derived from ID as Scheme + ID, never stored independently.
	URI string
	// Name is the human-readable label.
	Name string
	// Description is a free-text summary shown in listings.
	Description string
	// MIMEType is the declared content type of the backing document.
	MIMEType string
	// Path is the absolute location of the backing document, resolved
	// once at construction relative to the configured root.
	Path string
}

// Registry is the immutable, insertion-ordered table of projects.
// It is safe for concurrent use: nothing mutates it after New returns.
type Registry struct {
	root     string
	projects []Project
	byID     map[string]int
}

// New resolves defs against root and builds the registry. The root is
// made absolute; every definition path must be relative and must stay
// inside the root tree once resolved. Definitions are kept in the order
// given, which is also the listing order. An empty definition list is
// valid and yields an empty registry.
//
// New does not check that backing documents exist: documents are an
// external collaborator, read (and error-reported) at fetch time.
func New(root string, defs []Definition) (*Registry, error) {
	if root == "" {
		return nil, fmt.Errorf("registry: root directory is required")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("registry: resolving root %s: %w", root, err)
	}

	r := &Registry{
		root:     absRoot,
		projects: make([]Project, 0, len(defs)),
		byID:     make(map[string]int, len(defs)),
	}

	for i, d := range defs {
		if err := validateID(d.ID); err != nil {
			return nil, fmt.Errorf("registry: definition %d: %w", i+1, err)
		}
		if _, dup := r.byID[d.ID]; dup {
			return nil, fmt.Errorf("registry: duplicate project id %q", d.ID)
		}
		loc, err := resolveLocation(absRoot, d.ID, d.Path)
		if err != nil {
			return nil, err
		}

		mime := d.MIMEType
		if mime == "" {
			mime = DefaultMIMEType
		}

		r.byID[d.ID] = len(r.projects)
		r.projects = append(r.projects, Project{
			ID:          d.ID,
			URI:         Scheme + d.ID,
			Name:        d.Name,
			Description: d.Description,
			MIMEType:    mime,
			Path:        loc,
		})
	}

	return r, nil
}

// ListAll returns every registered project in insertion order. The
// returned slice is a copy; mutating it does not affect the registry.
// It never fails and is empty only for an empty registry.
func (r *Registry) ListAll() []Project {
	out := make([]Project, len(r.projects))
	copy(out, r.projects)
	return out
}

// Find returns the project registered under id. Matching is exact and
// case-sensitive; there is no fuzzy or prefix lookup.
func (r *Registry) Find(id string) (Project, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Project{}, false
	}
	return r.projects[i], true
}

// Identifiers returns the registered project IDs in insertion order.
func (r *Registry) Identifiers() []string {
	ids := make([]string, len(r.projects))
	for i, p := range r.projects {
		ids[i] = p.ID
	}
	return ids
}

// Len returns the number of registered projects.
func (r *Registry) Len() int {
	return len(r.projects)
}

// Root returns the absolute root directory the registry resolves against.
func (r *Registry) Root() string {
	return r.root
}

// validateID checks that an identifier can serve as a lookup key and a
// URI suffix.
func validateID(id string) error {
	if id == "" {
		return fmt.Errorf("project id is required")
	}
	if strings.ContainsAny(id, " \t\n/") {
		return fmt.Errorf("project id %q must not contain whitespace or '/'", id)
	}
	return nil
}

// resolveLocation joins rel onto root and verifies the result stays
// inside the root tree. Definitions are configuration, so a path that
// escapes the root ("../..." or an absolute path) is rejected instead
// of silently reading outside the workspace.
func resolveLocation(root, id, rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("registry: project %q has no document path", id)
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("registry: project %q path %q must be relative to the root", id, rel)
	}

	loc := filepath.Join(root, filepath.FromSlash(rel))

	inside, err := filepath.Rel(root, loc)
	if err != nil || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("registry: project %q path %q escapes the root directory", id, rel)
	}

	return loc, nil
}
