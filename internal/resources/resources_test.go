package resources_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Forge-Space/atlas/internal/registry"
	"github.com/Forge-Space/atlas/internal/resources"
	"github.com/mark3labs/mcp-go/mcp"
)

// newTestHandler builds a handler over a registry with real documents.
func newTestHandler(t *testing.T) (*resources.Handler, *registry.Registry) {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "alpha.md"), []byte("# Alpha context"), 0o644); err != nil {
		t.Fatalf("setup: write document: %v", err)
	}

	reg, err := registry.New(root, []registry.Definition{
		{ID: "alpha", Name: "Alpha", Description: "First project", Path: "alpha.md"},
		{ID: "beta", Name: "Beta", Description: "Second project", Path: "beta.md"},
	})
	if err != nil {
		t.Fatalf("setup: build registry: %v", err)
	}
	return resources.NewHandler(reg), reg
}

func readReq(uri string) mcp.ReadResourceRequest {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	return req
}

func contentsText(t *testing.T, contents []mcp.ResourceContents) mcp.TextResourceContents {
	t.Helper()
	if len(contents) != 1 {
		t.Fatalf("expected 1 resource contents, got %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected text contents, got %T", contents[0])
	}
	return tc
}

func TestIndexResource_Definition(t *testing.T) {
	h, _ := newTestHandler(t)
	res := h.IndexResource()

	if res.URI != resources.IndexURI {
		t.Errorf("URI = %q, want %q", res.URI, resources.IndexURI)
	}
	if res.MIMEType != "text/markdown" {
		t.Errorf("MIME type = %q, want text/markdown", res.MIMEType)
	}
}

func TestHandleIndex_ListsAllProjects(t *testing.T) {
	h, _ := newTestHandler(t)

	contents, err := h.HandleIndex(context.Background(), readReq(resources.IndexURI))
	if err != nil {
		t.Fatalf("HandleIndex failed: %v", err)
	}

	tc := contentsText(t, contents)
	want := "- **alpha**: First project\n- **beta**: Second project\n"
	if tc.Text != want {
		t.Errorf("index = %q, want %q", tc.Text, want)
	}
	if tc.URI != resources.IndexURI {
		t.Errorf("URI = %q, want %q", tc.URI, resources.IndexURI)
	}
}

func TestProjectResource_Definition(t *testing.T) {
	h, reg := newTestHandler(t)
	p, _ := reg.Find("alpha")
	res := h.ProjectResource(p)

	if res.URI != "context://alpha" {
		t.Errorf("URI = %q, want context://alpha", res.URI)
	}
	if res.Name != "Alpha" {
		t.Errorf("name = %q, want Alpha", res.Name)
	}
	if res.MIMEType != "text/markdown" {
		t.Errorf("MIME type = %q, want text/markdown", res.MIMEType)
	}
}

func TestHandleProject_ServesDocumentVerbatim(t *testing.T) {
	h, _ := newTestHandler(t)

	contents, err := h.HandleProject(context.Background(), readReq("context://alpha"))
	if err != nil {
		t.Fatalf("HandleProject failed: %v", err)
	}

	tc := contentsText(t, contents)
	if tc.Text != "# Alpha context" {
		t.Errorf("content = %q, want %q", tc.Text, "# Alpha context")
	}
	if tc.MIMEType != "text/markdown" {
		t.Errorf("MIME type = %q, want text/markdown", tc.MIMEType)
	}
}

func TestHandleProject_UnknownURI(t *testing.T) {
	h, _ := newTestHandler(t)

	contents, err := h.HandleProject(context.Background(), readReq("context://nope"))
	if err != nil {
		t.Fatalf("HandleProject failed: %v", err)
	}

	tc := contentsText(t, contents)
	if !strings.HasPrefix(tc.Text, "Error:") {
		t.Errorf("expected an error resource, got %q", tc.Text)
	}
	if tc.MIMEType != "text/plain" {
		t.Errorf("error MIME type = %q, want text/plain", tc.MIMEType)
	}
}

func TestHandleProject_ReadFailure(t *testing.T) {
	h, _ := newTestHandler(t)

	// beta is registered but its document was never written.
	contents, err := h.HandleProject(context.Background(), readReq("context://beta"))
	if err != nil {
		t.Fatalf("HandleProject failed: %v", err)
	}

	tc := contentsText(t, contents)
	if !strings.HasPrefix(tc.Text, "Error:") {
		t.Errorf("expected an error resource, got %q", tc.Text)
	}
	if !strings.Contains(tc.Text, `"beta"`) {
		t.Errorf("expected the project identifier in the error, got %q", tc.Text)
	}
}
