// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		uri      string
		scheme   Scheme
		typ      string
		group    string
		name     string
		version  string
		internal string
	}{
		{"artifact:jar:net.example/widget#1.0", SchemeArtifact, "jar", "net.example", "widget", "1.0", ""},
		{"link:part:acme/tools/lint", SchemeLink, "part", "acme/tools", "lint", "", ""},
		{"local:xml:depot/hosts", SchemeLocal, "xml", "depot", "hosts", "", ""},
		{"artifact:zip:acme/docs#2.0!/index.html", SchemeArtifact, "zip", "acme", "docs", "2.0", "/index.html"},
		{"artifact:jar:acme/lib#", SchemeArtifact, "jar", "acme", "lib", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			t.Parallel()
			a, err := Parse(tt.uri)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.uri, err)
			}
			if a.Scheme() != tt.scheme || a.Type() != tt.typ || a.Group() != tt.group ||
				a.Name() != tt.name || a.Version() != tt.version || a.Internal() != tt.internal {
				t.Errorf("Parse(%q) = %#v", tt.uri, a)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		uri  string
		want any
	}{
		{"http://example.com/widget", new(*UnsupportedSchemeError)},
		{"widget", new(*InvalidURIError)},
		{"artifact:jar:widget", new(*MissingGroupError)},
		{"artifact:jar:/widget", new(*InvalidURIError)},
		{"artifact:jar:acme//widget", new(*InvalidURIError)},
		{"artifact:jar:acme/widget/", new(*InvalidURIError)},
		{"artifact::acme/widget", new(*InvalidURIError)},
		{"artifact:jar:acme/widget#1.0(beta)", new(*InvalidURIError)},
		{"artifact:jar:acme/widget#1,0", new(*InvalidURIError)},
		{"artifact:zip:acme/docs!", new(*InvalidURIError)},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.uri)
			if err == nil {
				t.Fatalf("Parse(%q) expected error", tt.uri)
			}
			if !errors.Is(err, ErrInvalidURI) {
				t.Errorf("errors.Is(err, ErrInvalidURI) = false for %v", err)
			}
			if !errors.As(err, tt.want) {
				t.Errorf("Parse(%q) error type = %T", tt.uri, err)
			}
		})
	}
}

func TestArtifact_String(t *testing.T) {
	t.Parallel()

	uris := []string{
		"artifact:jar:net.example/widget#1.0",
		"link:part:acme/tools/lint",
		"artifact:zip:acme/docs#2.0!/index.html",
	}
	for _, uri := range uris {
		if got := MustParse(uri).String(); got != uri {
			t.Errorf("String() = %q, want %q", got, uri)
		}
	}

	a := MustParse("link:part:acme/tools/lint")
	if got := a.WithScheme(SchemeArtifact).WithType("jar").String(); got != "artifact:jar:acme/tools/lint" {
		t.Errorf("WithScheme/WithType = %q", got)
	}
	if got := MustParse("artifact:zip:acme/docs!/a.txt").WithoutInternal().String(); got != "artifact:zip:acme/docs" {
		t.Errorf("WithoutInternal() = %q", got)
	}
}

func TestIsArtifactURI(t *testing.T) {
	t.Parallel()

	if !IsArtifactURI("artifact:jar:a/b") || !IsArtifactURI("link:part:a/b") {
		t.Error("expected artifact URIs to be recognized")
	}
	if IsArtifactURI("file:///tmp/x") || IsArtifactURI("/tmp/x") {
		t.Error("expected non-artifact URIs to be rejected")
	}
}
