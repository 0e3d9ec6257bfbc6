// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/depotkit/depot/internal/config"
	"github.com/depotkit/depot/internal/dag"
	"github.com/depotkit/depot/internal/issue"
	"github.com/depotkit/depot/pkg/artifact"
	"github.com/depotkit/depot/pkg/classpath"
	"github.com/depotkit/depot/pkg/library"
	"github.com/depotkit/depot/pkg/part"
	"github.com/depotkit/depot/pkg/transit"
)

const (
	exitFailure  = 1
	exitNotFound = 2
)

// classifyError maps a failure to the issue catalog. Zero means no guide applies.
func classifyError(err error) issue.Id {
	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.Issue != 0 {
		return ae.Issue
	}

	switch {
	case errors.Is(err, os.ErrPermission):
		return issue.PermissionDeniedId
	case errors.Is(err, library.ErrUnknownResource):
		return issue.UnknownResourceId
	case errors.Is(err, dag.ErrCycle):
		return issue.DependencyCycleId
	case errors.Is(err, artifact.ErrInvalidURI), errors.Is(err, artifact.ErrInvalidIdentity):
		return issue.InvalidArtifactURIId
	case errors.Is(err, transit.ErrArtifactNotFound):
		return issue.ArtifactNotFoundId
	case errors.Is(err, classpath.ErrMissingCodebase):
		return issue.MissingCodebaseId
	case errors.Is(err, part.ErrUnknownPlugin):
		return issue.UnknownPluginId
	case errors.Is(err, part.ErrDecoding):
		return issue.PartDecodingErrorId
	case errors.Is(err, transit.ErrCache), errors.Is(err, transit.ErrArtifactExists):
		return issue.CacheErrorId
	case errors.Is(err, transit.ErrInvalidDirective), errors.Is(err, config.ErrInvalidConfig):
		return issue.ConfigLoadFailedId
	}
	return 0
}

// fail renders the guide matching err on stderr and returns err as an
// ExitError so fang prints it once and the process exits non-zero.
func (a *App) fail(err error) error {
	if err == nil {
		return nil
	}

	id := classifyError(err)
	if a.flags.verbose {
		fmt.Fprintf(a.stderr, "\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, true))
	}
	if guide := issue.Get(id); guide != nil {
		if rendered, renderErr := guide.Render(a.glamourStyle()); renderErr == nil {
			fmt.Fprint(a.stderr, rendered)
		}
	}

	code := exitFailure
	if id == issue.ArtifactNotFoundId || id == issue.UnknownResourceId {
		code = exitNotFound
	}
	return &ExitError{Code: code, Err: err}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// glamourStyle maps the configured color scheme to a glamour style.
func (a *App) glamourStyle() string {
	switch a.colorScheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}
