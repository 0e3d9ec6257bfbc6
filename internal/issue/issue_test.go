// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestId_Constants(t *testing.T) {
	t.Parallel()

	ids := []Id{
		ConfigLoadFailedId,
		LibraryNotFoundId,
		LibraryParseErrorId,
		UnknownResourceId,
		DependencyCycleId,
		InvalidArtifactURIId,
		ArtifactNotFoundId,
		MissingCodebaseId,
		CacheErrorId,
		PartDecodingErrorId,
		UnknownPluginId,
		PermissionDeniedId,
	}

	seen := make(map[Id]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true
		if Get(id) == nil {
			t.Errorf("Get(%d) returned nil; every id needs a catalog entry", id)
		}
	}

	// Verify IDs start at 1 (iota + 1)
	if ConfigLoadFailedId != 1 {
		t.Errorf("ConfigLoadFailedId = %d, want 1", ConfigLoadFailedId)
	}
}

func TestIssue_MarkdownMsg(t *testing.T) {
	t.Parallel()

	issue := Get(ArtifactNotFoundId)
	if issue == nil {
		t.Fatal("Get(ArtifactNotFoundId) returned nil")
	}

	msg := string(issue.MarkdownMsg())
	if !strings.Contains(msg, "Artifact not found") {
		t.Error("MarkdownMsg() should contain 'Artifact not found'")
	}
	if !strings.Contains(msg, "depot hosts") {
		t.Error("MarkdownMsg() should point at 'depot hosts'")
	}
}

func TestIssue_LinksAreCloned(t *testing.T) {
	t.Parallel()

	issue := &Issue{
		id:       CacheErrorId,
		docLinks: []HttpLink{"https://docs.example.org/cache"},
		extLinks: []HttpLink{"https://example.org/disk"},
	}

	docs := issue.DocLinks()
	docs[0] = "modified"
	if issue.DocLinks()[0] != "https://docs.example.org/cache" {
		t.Error("DocLinks() should return a clone")
	}

	ext := issue.ExtLinks()
	ext[0] = "modified"
	if issue.ExtLinks()[0] != "https://example.org/disk" {
		t.Error("ExtLinks() should return a clone")
	}
}

func TestIssue_Render(t *testing.T) {
	t.Parallel()

	out, err := Get(DependencyCycleId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "Dependency cycle detected") {
		t.Errorf("Render() output missing heading:\n%s", out)
	}
}

func TestIssue_RenderAppendsLinks(t *testing.T) {
	t.Parallel()

	var got string
	issue := &Issue{
		id:       CacheErrorId,
		mdMsg:    "# Cache error!",
		docLinks: []HttpLink{"https://docs.example.org/cache"},
	}

	// Render through a stub to inspect the markdown handed to glamour.
	stub := func(in, _ string) (string, error) {
		got = in
		return in, nil
	}
	out, err := renderWith(issue, stub, "dark")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out != got || !strings.Contains(got, "## See also:") || !strings.Contains(got, "<https://docs.example.org/cache>") {
		t.Errorf("unexpected markdown:\n%s", got)
	}
}

func TestIssue_RenderError(t *testing.T) {
	t.Parallel()

	want := errors.New("boom")
	_, err := renderWith(Get(CacheErrorId), func(string, string) (string, error) { return "", want }, "dark")
	if !errors.Is(err, want) {
		t.Errorf("expected renderer error, got %v", err)
	}
}

func TestValues(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != len(issues) {
		t.Fatalf("Values() returned %d issues, want %d", len(values), len(issues))
	}
	for i, issue := range values {
		if issue.Id() != Id(i+1) {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, issue.Id(), i+1)
		}
	}
}

func TestGet_Unknown(t *testing.T) {
	t.Parallel()

	if Get(Id(9999)) != nil {
		t.Error("Get() should return nil for unknown ids")
	}
}
