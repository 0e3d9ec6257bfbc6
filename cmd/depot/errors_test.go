// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/depotkit/depot/internal/config"
	"github.com/depotkit/depot/internal/dag"
	"github.com/depotkit/depot/internal/issue"
	"github.com/depotkit/depot/pkg/artifact"
	"github.com/depotkit/depot/pkg/classpath"
	"github.com/depotkit/depot/pkg/library"
	"github.com/depotkit/depot/pkg/part"
	"github.com/depotkit/depot/pkg/transit"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want issue.Id
	}{
		{
			name: "actionable error carries its issue",
			err: issue.NewErrorContext().
				WithOperation("find library").
				WithIssue(issue.LibraryNotFoundId).
				Wrap(errors.New("no library")).
				BuildError(),
			want: issue.LibraryNotFoundId,
		},
		{
			name: "actionable error without issue falls through to its cause",
			err: issue.NewErrorContext().
				WithOperation("fetch").
				Wrap(&transit.ArtifactNotFoundError{URI: "artifact:jar:acme/util#1.0"}).
				BuildError(),
			want: issue.ArtifactNotFoundId,
		},
		{name: "permission", err: fmt.Errorf("open: %w", os.ErrPermission), want: issue.PermissionDeniedId},
		{name: "unknown resource", err: &library.UnknownResourceError{Key: "ghost"}, want: issue.UnknownResourceId},
		{name: "cycle", err: fmt.Errorf("order: %w", dag.ErrCycle), want: issue.DependencyCycleId},
		{name: "invalid uri", err: &artifact.InvalidURIError{URI: "jar:x", Reason: "bad"}, want: issue.InvalidArtifactURIId},
		{name: "invalid identity", err: fmt.Errorf("x: %w", artifact.ErrInvalidIdentity), want: issue.InvalidArtifactURIId},
		{name: "missing codebase", err: &classpath.MissingCodebaseError{Resource: "app", Target: "api", Type: "jar"}, want: issue.MissingCodebaseId},
		{name: "unknown plugin", err: &part.UnknownPluginError{Class: "org.acme.Ghost"}, want: issue.UnknownPluginId},
		{name: "decoding", err: fmt.Errorf("load: %w", part.ErrDecoding), want: issue.PartDecodingErrorId},
		{name: "artifact exists", err: fmt.Errorf("install: %w", transit.ErrArtifactExists), want: issue.CacheErrorId},
		{name: "invalid directive", err: fmt.Errorf("x: %w", transit.ErrInvalidDirective), want: issue.ConfigLoadFailedId},
		{name: "invalid config", err: fmt.Errorf("x: %w", config.ErrInvalidConfig), want: issue.ConfigLoadFailedId},
		{name: "unclassified", err: errors.New("boom"), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := classifyError(tt.err); got != tt.want {
				t.Errorf("classifyError() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestApp_Fail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		verbose   bool
		wantCode  int
		wantGuide bool
	}{
		{name: "not found", err: &transit.ArtifactNotFoundError{URI: "artifact:jar:acme/util#1.0"}, wantCode: exitNotFound, wantGuide: true},
		{name: "unknown resource", err: &library.UnknownResourceError{Key: "ghost"}, wantCode: exitNotFound, wantGuide: true},
		{name: "cycle", err: fmt.Errorf("order: %w", dag.ErrCycle), wantCode: exitFailure, wantGuide: true},
		{name: "unclassified verbose", err: errors.New("boom"), verbose: true, wantCode: exitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stderr bytes.Buffer
			app := NewApp(Dependencies{Stdout: &bytes.Buffer{}, Stderr: &stderr})
			app.colorScheme = config.ColorSchemeDark
			app.flags.verbose = tt.verbose

			err := app.fail(tt.err)
			var exitErr *ExitError
			if !errors.As(err, &exitErr) {
				t.Fatalf("fail() = %T, want *ExitError", err)
			}
			if exitErr.Code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", exitErr.Code, tt.wantCode)
			}
			if !errors.Is(err, tt.err) {
				t.Error("fail() should wrap the original error")
			}
			if tt.wantGuide && stderr.Len() == 0 {
				t.Error("expected a guide on stderr")
			}
			if tt.verbose && !strings.Contains(stderr.String(), "boom") {
				t.Errorf("verbose stderr should include the error, got %q", stderr.String())
			}
		})
	}

	if err := NewApp(Dependencies{}).fail(nil); err != nil {
		t.Errorf("fail(nil) = %v, want nil", err)
	}
}

func TestApp_GlamourStyle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scheme config.ColorScheme
		want   string
	}{
		{config.ColorSchemeDark, "dark"},
		{config.ColorSchemeLight, "light"},
		{config.ColorSchemeAuto, "auto"},
		{"", "auto"},
	}
	for _, tt := range tests {
		app := NewApp(Dependencies{})
		app.colorScheme = tt.scheme
		if got := app.glamourStyle(); got != tt.want {
			t.Errorf("glamourStyle(%q) = %q, want %q", tt.scheme, got, tt.want)
		}
	}
}
