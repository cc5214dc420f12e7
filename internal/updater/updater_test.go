package updater

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
)

// --- Test helpers ---

// releaseServer serves a canned GitHub release payload with the given
// status. The server is closed automatically when the test finishes.
func releaseServer(t *testing.T, release ReleaseInfo, status int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		if status == http.StatusOK {
			if err := json.NewEncoder(w).Encode(release); err != nil {
				t.Errorf("encoding release payload: %v", err)
			}
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

// pointAtServer redirects release lookups to a test server for the
// duration of the test, restoring the real endpoint afterwards.
func pointAtServer(t *testing.T, ts *httptest.Server) {
	t.Helper()
	prevEndpoint, prevClient := releaseEndpoint, httpClient
	releaseEndpoint = ts.URL
	httpClient = ts.Client()
	t.Cleanup(func() {
		releaseEndpoint = prevEndpoint
		httpClient = prevClient
	})
}

// tarEntry is one file to place in a test archive.
type tarEntry struct {
	name string
	data []byte
}

// packTarGz builds a small .tar.gz archive with the given entries in order.
func packTarGz(t *testing.T, entries []tarEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)

	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0o755, Size: int64(len(e.data))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("tar header %s: %v", e.name, err)
		}
		if _, err := tw.Write(e.data); err != nil {
			t.Fatalf("tar body %s: %v", e.name, err)
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatalf("closing tar: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("closing gzip: %v", err)
	}
	return buf.Bytes()
}

// --- Version comparison ---

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"v1.4.0", "1.4.0"},
		{"1.4.0", "1.4.0"},
		{"v0.9.12", "0.9.12"},
		{"", ""},
		{"v", ""},
		{"vv2.0.0", "v2.0.0"}, // only one leading v is stripped
	}

	for _, tt := range tests {
		if got := normalizeVersion(tt.in); got != tt.want {
			t.Errorf("normalizeVersion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsNewer(t *testing.T) {
	tests := []struct {
		name    string
		current string
		latest  string
		want    bool
	}{
		{"patch bump", "1.4.0", "1.4.1", true},
		{"minor bump", "1.4.1", "1.5.0", true},
		{"major bump", "1.5.0", "2.0.0", true},
		{"equal", "1.4.0", "1.4.0", false},
		{"downgrade", "1.5.0", "1.4.9", false},
		{"double digit minor", "1.9.0", "1.10.0", true},
		{"short current", "1.4", "1.4.1", true},
		{"short latest", "1.4.0", "1.5", true},
		{"empty current", "", "1.4.0", false},
		{"empty latest", "1.4.0", "", false},
		{"dev build", "dev", "99.0.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNewer(tt.current, tt.latest); got != tt.want {
				t.Errorf("isNewer(%q, %q) = %v, want %v", tt.current, tt.latest, got, tt.want)
			}
		})
	}
}

func TestParseIntSafe(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"0", 0},
		{"7", 7},
		{"128", 128},
		{"2rc1", 2}, // digits up to the first non-digit
		{"beta", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := parseIntSafe(tt.in); got != tt.want {
			t.Errorf("parseIntSafe(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestBuildAssetName_MatchesReleaseLayout(t *testing.T) {
	ext := "tar.gz"
	if runtime.GOOS == "windows" {
		ext = "zip"
	}
	want := fmt.Sprintf("atlas_1.2.3_%s_%s.%s", runtime.GOOS, runtime.GOARCH, ext)

	if got := buildAssetName("1.2.3"); got != want {
		t.Errorf("buildAssetName(\"1.2.3\") = %q, want %q", got, want)
	}
}

// --- CheckVersion ---

func TestCheckVersion_ReportsNewerRelease(t *testing.T) {
	release := ReleaseInfo{
		TagName: "v1.2.0",
		HTMLURL: "https://github.com/Forge-Space/atlas/releases/tag/v1.2.0",
	}
	pointAtServer(t, releaseServer(t, release, http.StatusOK))

	result := CheckVersion("v1.1.0")

	if !result.UpdateAvailable {
		t.Error("expected an available update")
	}
	if result.CurrentVersion != "1.1.0" || result.LatestVersion != "1.2.0" {
		t.Errorf("versions = %q -> %q, want 1.1.0 -> 1.2.0", result.CurrentVersion, result.LatestVersion)
	}
	if result.ReleaseURL != release.HTMLURL {
		t.Errorf("ReleaseURL = %q, want %q", result.ReleaseURL, release.HTMLURL)
	}
}

func TestCheckVersion_AlreadyCurrent(t *testing.T) {
	pointAtServer(t, releaseServer(t, ReleaseInfo{TagName: "v1.1.0"}, http.StatusOK))

	if result := CheckVersion("v1.1.0"); result.UpdateAvailable {
		t.Error("no update should be reported at the latest version")
	}
}

func TestCheckVersion_SendsGitHubHeaders(t *testing.T) {
	var gotAccept, gotAgent string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotAgent = r.Header.Get("User-Agent")
		_ = json.NewEncoder(w).Encode(ReleaseInfo{TagName: "v1.2.0"})
	}))
	t.Cleanup(ts.Close)
	pointAtServer(t, ts)

	CheckVersion("v1.1.0")

	if gotAccept != "application/vnd.github.v3+json" {
		t.Errorf("Accept = %q, want the GitHub v3 media type", gotAccept)
	}
	if gotAgent != "atlas/v1.1.0" {
		t.Errorf("User-Agent = %q, want %q", gotAgent, "atlas/v1.1.0")
	}
}

func TestCheckVersion_SurvivesNetworkFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	ts.Close() // connections refused from here on
	pointAtServer(t, ts)

	result := CheckVersion("v1.1.0")

	if result.UpdateAvailable {
		t.Error("a failed check must not report an update")
	}
	if result.CurrentVersion != "1.1.0" {
		t.Errorf("CurrentVersion = %q, want %q", result.CurrentVersion, "1.1.0")
	}
}

func TestCheckVersion_SurvivesAPIError(t *testing.T) {
	pointAtServer(t, releaseServer(t, ReleaseInfo{}, http.StatusForbidden))

	if result := CheckVersion("v1.1.0"); result.UpdateAvailable {
		t.Error("an API error must not report an update")
	}
}

func TestCheckVersion_DevBuildNeverUpdates(t *testing.T) {
	pointAtServer(t, releaseServer(t, ReleaseInfo{TagName: "v9.9.9"}, http.StatusOK))

	if result := CheckVersion("dev"); result.UpdateAvailable {
		t.Error("dev builds cannot be compared against releases")
	}
}

// --- SelfUpdate ---

func TestSelfUpdate_RefusesWhenCurrent(t *testing.T) {
	pointAtServer(t, releaseServer(t, ReleaseInfo{TagName: "v1.1.0"}, http.StatusOK))

	err := SelfUpdate("v1.1.0")
	if err == nil {
		t.Fatal("expected an error when already current")
	}
	if got, want := err.Error(), "already at latest version (v1.1.0)"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
}

func TestSelfUpdate_FailsOnAPIError(t *testing.T) {
	pointAtServer(t, releaseServer(t, ReleaseInfo{}, http.StatusInternalServerError))

	if err := SelfUpdate("v1.1.0"); err == nil {
		t.Fatal("expected an error when the release lookup fails")
	}
}

func TestSelfUpdate_FailsWithoutMatchingAsset(t *testing.T) {
	release := ReleaseInfo{
		TagName: "v1.2.0",
		Assets: []Asset{
			{Name: "atlas_1.2.0_plan9_mips.tar.gz", BrowserDownloadURL: "https://example.com/wrong-platform"},
		},
	}
	pointAtServer(t, releaseServer(t, release, http.StatusOK))

	err := SelfUpdate("v1.1.0")
	if err == nil {
		t.Fatal("expected an error when no asset matches this platform")
	}
	if !strings.Contains(err.Error(), runtime.GOOS) {
		t.Errorf("error should name the missing platform: %v", err)
	}
}

// --- Archive extraction ---

func TestExtractFromTarGz_FindsBinary(t *testing.T) {
	payload := []byte("atlas build 1.2.0")
	archive := packTarGz(t, []tarEntry{{name: "atlas", data: payload}})

	got, err := extractFromTarGz(bytes.NewReader(archive))
	if err != nil {
		t.Fatalf("extractFromTarGz: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("extracted %q, want %q", got, payload)
	}
}

func TestExtractFromTarGz_FindsNestedBinary(t *testing.T) {
	// Release archives may wrap the binary in a versioned directory;
	// matching is by base name.
	payload := []byte("nested build")
	archive := packTarGz(t, []tarEntry{
		{name: "atlas_1.2.0_linux_amd64/atlas", data: payload},
	})

	got, err := extractFromTarGz(bytes.NewReader(archive))
	if err != nil {
		t.Fatalf("extractFromTarGz: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("extracted %q, want %q", got, payload)
	}
}

func TestExtractFromTarGz_SkipsUnrelatedEntries(t *testing.T) {
	payload := []byte("the binary")
	archive := packTarGz(t, []tarEntry{
		{name: "LICENSE", data: []byte("MIT")},
		{name: "README.md", data: []byte("# atlas")},
		{name: "atlas", data: payload},
	})

	got, err := extractFromTarGz(bytes.NewReader(archive))
	if err != nil {
		t.Fatalf("extractFromTarGz: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("extracted %q, want %q", got, payload)
	}
}

func TestExtractFromTarGz_MissingBinary(t *testing.T) {
	archive := packTarGz(t, []tarEntry{{name: "CHANGELOG.md", data: []byte("notes")}})

	if _, err := extractFromTarGz(bytes.NewReader(archive)); err == nil {
		t.Fatal("expected an error when the archive has no atlas binary")
	}
}

func TestExtractFromTarGz_RejectsCorruptStream(t *testing.T) {
	if _, err := extractFromTarGz(strings.NewReader("definitely not gzip")); err == nil {
		t.Fatal("expected an error for a corrupt stream")
	}
}

func TestExtractFromZip_Unsupported(t *testing.T) {
	_, err := extractFromZip(strings.NewReader("zip bytes"))
	if err == nil {
		t.Fatal("expected the zip path to report it is unsupported")
	}
	if !strings.Contains(err.Error(), "not supported") {
		t.Errorf("error = %v, want the unsupported notice", err)
	}
}

func TestExtractBinary_PicksFormatFromAssetName(t *testing.T) {
	payload := []byte("tarball binary")
	archive := packTarGz(t, []tarEntry{{name: "atlas", data: payload}})

	got, err := extractBinary(bytes.NewReader(archive), "atlas_1.2.0_linux_amd64.tar.gz")
	if err != nil {
		t.Fatalf("extractBinary(tar.gz): %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("extracted %q, want %q", got, payload)
	}

	if _, err := extractBinary(bytes.NewReader([]byte("zip bytes")), "atlas_1.2.0_windows_amd64.zip"); err == nil {
		t.Fatal("expected the zip path to fail")
	}
}
