// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/depotkit/depot/pkg/artifact"

	"github.com/spf13/cobra"
)

// newArtifactCommand creates the `depot artifact` command.
func newArtifactCommand(app *App) *cobra.Command {
	var cached bool

	cmd := &cobra.Command{
		Use:   "artifact <uri>",
		Short: "Show the identity derivations of an artifact URI",
		Long: `Parse an artifact URI and show the names derived from its identity.

URIs have the form scheme:type:group/name[#version][!/internal/path] where
scheme is artifact, link or local.`,
		Example: `  depot artifact 'artifact:jar:org/acme/util#1.2'
  depot artifact --cached 'artifact:jar:org/acme/util'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := artifact.Parse(args[0])
			if err != nil {
				return app.fail(err)
			}
			info := a.Info()

			row := func(label, value string) {
				if value == "" {
					value = SubtitleStyle.Render("-")
				}
				fmt.Fprintf(app.stdout, "%s%s\n", labelStyle.Render(label), value)
			}
			row("scheme", a.Scheme().String())
			row("type", a.Type())
			row("group", a.Group())
			row("name", a.Name())
			row("version", a.Version())
			row("spec", info.Spec())
			row("filename", info.Filename(a.Type()))
			row("path", info.Path(a.Type()))
			row("docpath", info.DocPath())
			row("internal", a.Internal())

			if !cached {
				return nil
			}
			s, err := app.openSession(cmd.Context())
			if err != nil {
				return app.fail(err)
			}
			p, err := s.cache.Path(a.String())
			if err != nil {
				return app.fail(err)
			}
			versions, err := s.cache.Versions(a.Group(), a.Name(), a.Type())
			if err != nil {
				return app.fail(err)
			}
			row("cache", p)
			row("cached", strings.Join(versions, ", "))
			return nil
		},
	}

	cmd.Flags().BoolVar(&cached, "cached", false, "also show the cache location and the cached versions")
	return cmd
}
