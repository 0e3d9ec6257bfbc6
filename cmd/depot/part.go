// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/depotkit/depot/pkg/artifact"
	"github.com/depotkit/depot/pkg/part"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

// newPartCommand creates the `depot part` command.
func newPartCommand(app *App) *cobra.Command {
	var asXML bool

	cmd := &cobra.Command{
		Use:   "part <uri|path>",
		Short: "Load a part descriptor and show what it deploys",
		Long: `Load a part descriptor and show its info, classpath and strategy.

Artifact and link URIs are fetched through the cache. Anything else is read
as a file path or file: URL.`,
		Example: `  depot part 'link:part:org/acme/widget'
  depot part ./widget.part --xml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := app.openSession(ctx)
			if err != nil {
				return app.fail(err)
			}

			var p *part.Part
			if artifact.IsArtifactURI(args[0]) {
				v, err := s.cache.Content(ctx, args[0])
				if err != nil {
					return app.fail(err)
				}
				var ok bool
				if p, ok = v.(*part.Part); !ok {
					return app.fail(fmt.Errorf("%s is not a part (resolved to %v)", args[0], v))
				}
			} else if p, err = s.loader.Load(ctx, args[0], nil, "", true); err != nil {
				return app.fail(err)
			}

			if asXML {
				if err := p.Encode(app.stdout); err != nil {
					return app.fail(err)
				}
				fmt.Fprintln(app.stdout)
				return nil
			}
			return writePart(app, p)
		},
	}

	cmd.Flags().BoolVar(&asXML, "xml", false, "print the descriptor as XML")
	return cmd
}

// writePart prints the summary of a loaded part.
func writePart(app *App, p *part.Part) error {
	title := p.Info.Title
	if title == "" {
		title = p.Info.URI
	}
	fmt.Fprintln(app.stdout, TitleStyle.Render(title))
	fmt.Fprintf(app.stdout, "%s%s\n", labelStyle.Render("uri"), p.Info.URI)
	fmt.Fprintf(app.stdout, "%s%s\n", labelStyle.Render("unit"), p.Unit().String())

	el := p.Strategy.Element()
	strategy := el.Name.Local
	if el.Name.Space != part.Namespace {
		strategy = "{" + el.Name.Space + "}" + strategy
	}
	switch s := p.Strategy.(type) {
	case *part.PluginStrategy:
		strategy += " " + KeyStyle.Render(s.Class)
	case *part.ResourceStrategy:
		strategy += " " + KeyStyle.Render(s.Path)
	}
	fmt.Fprintf(app.stdout, "%s%s\n", labelStyle.Render("strategy"), strategy)

	if desc := p.Info.Description; desc != "" {
		rendered, err := glamour.Render(desc, app.glamourStyle())
		if err != nil {
			return app.fail(err)
		}
		fmt.Fprint(app.stdout, rendered)
	}

	fmt.Fprintln(app.stdout)
	writeClasspath(app, &p.Classpath)
	return nil
}
