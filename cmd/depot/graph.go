// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/depotkit/depot/pkg/classpath"
	"github.com/depotkit/depot/pkg/library"

	"github.com/spf13/cobra"
)

// newResolveCommand creates the `depot resolve` command.
func newResolveCommand(app *App) *cobra.Command {
	var (
		mode       string
		category   string
		transitive bool
		sameModule bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <key>",
		Short: "List the dependency edges of a resource",
		Long: `List the dependency edges of a resource in traversal order.

Edges are selected when their policy matches --mode and, for the edges of
the resource itself, when they match --category. With --transitive the
targets of selected edges are walked as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := library.ParseMode(mode)
			if err != nil {
				return app.fail(err)
			}
			c, err := library.ParseCategory(category)
			if err != nil {
				return app.fail(err)
			}
			r, err := app.resource(cmd, args[0])
			if err != nil {
				return app.fail(err)
			}

			refs, err := r.Resolve(library.ResolveOptions{Mode: m, Category: c, Transitive: transitive, SameModule: sameModule})
			if err != nil {
				return app.fail(err)
			}
			for _, ref := range refs {
				fmt.Fprintf(app.stdout, "%s %s\n", KeyStyle.Render(ref.TargetKey()),
					VerboseStyle.Render(fmt.Sprintf("policy=%s category=%s scope=%s", ref.Policy, ref.Category, ref.Scope)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(library.ModeAny), "lifecycle mode (build, test, runtime, any)")
	cmd.Flags().StringVar(&category, "category", string(library.CategoryAny), "edge category of the resource (api, spi, impl, any)")
	cmd.Flags().BoolVarP(&transitive, "transitive", "t", false, "walk the dependency closure")
	cmd.Flags().BoolVar(&sameModule, "same-module", false, "keep only edges within the resource's module")
	return cmd
}

// newPathCommand creates the `depot path` command.
func newPathCommand(app *App) *cobra.Command {
	var (
		mode       string
		typ        string
		sameModule bool
		self       bool
	)

	cmd := &cobra.Command{
		Use:   "path <key>",
		Short: "List the artifact URIs of a dependency closure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := library.ParseMode(mode)
			if err != nil {
				return app.fail(err)
			}
			r, err := app.resource(cmd, args[0])
			if err != nil {
				return app.fail(err)
			}
			uris, err := r.Path(m, typ, sameModule, self)
			if err != nil {
				return app.fail(err)
			}
			for _, uri := range uris {
				fmt.Fprintln(app.stdout, uri)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(library.ModeRuntime), "lifecycle mode (build, test, runtime, any)")
	cmd.Flags().StringVar(&typ, "type", library.PathAnyType, "artifact type to list, or * for every declared type")
	cmd.Flags().BoolVar(&sameModule, "same-module", false, "keep only resources within the resource's module")
	cmd.Flags().BoolVar(&self, "self", false, "list the resource itself first")
	return cmd
}

// newClasspathCommand creates the `depot classpath` command.
func newClasspathCommand(app *App) *cobra.Command {
	var (
		codebase string
		system   []string
		tier     string
	)

	cmd := &cobra.Command{
		Use:   "classpath <key>",
		Short: "Assemble the four classpath tiers of a resource",
		Long: `Assemble the classpath of a resource.

API edges feed the public tier, SPI edges the protected tier and
implementation edges the private tier. A resource appears in the first
tier that reaches it only.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app.resource(cmd, args[0])
			if err != nil {
				return app.fail(err)
			}
			asm := classpath.NewAssembler(classpath.WithCodebaseType(codebase), classpath.WithSystem(system...))

			if tier != "" {
				c, err := classpath.ParseCategory(tier)
				if err != nil {
					return app.fail(err)
				}
				uris, err := asm.Category(r, c)
				if err != nil {
					return app.fail(err)
				}
				for _, uri := range uris {
					fmt.Fprintln(app.stdout, uri)
				}
				return nil
			}

			cp, err := asm.Build(r)
			if err != nil {
				return app.fail(err)
			}
			writeClasspath(app, cp)
			return nil
		},
	}

	cmd.Flags().StringVar(&codebase, "type", classpath.DefaultCodebaseType, "artifact type placed on the classpath")
	cmd.Flags().StringSliceVar(&system, "system", nil, "URIs placed in the system tier")
	cmd.Flags().StringVar(&tier, "tier", "", "print a single tier (system, public, protected, private)")
	return cmd
}

// newOrderCommand creates the `depot order` command.
func newOrderCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "order [keys...]",
		Short: "Print resources in build order",
		Long: `Print resources so that each follows the resources it depends on.

Without keys the whole library is ordered.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(err)
			}
			idx, err := app.loadIndex(cfg)
			if err != nil {
				return app.fail(err)
			}
			order, err := idx.BuildOrder(args...)
			if err != nil {
				return app.fail(err)
			}
			for i, r := range order {
				fmt.Fprintf(app.stdout, "%3d. %s %s\n", i+1, KeyStyle.Render(r.Key()), SubtitleStyle.Render(r.Info().Spec()))
			}
			return nil
		},
	}
}

// resource loads the configuration and library and looks up key.
func (a *App) resource(cmd *cobra.Command, key string) (*library.Resource, error) {
	cfg, err := a.loadConfig(cmd.Context())
	if err != nil {
		return nil, err
	}
	idx, err := a.loadIndex(cfg)
	if err != nil {
		return nil, err
	}
	return idx.Resource(key)
}

// writeClasspath prints the non-empty tiers of cp.
func writeClasspath(app *App, cp *classpath.Classpath) {
	if cp.IsEmpty() {
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("(empty classpath)"))
		return
	}
	for _, c := range classpath.Categories() {
		uris := cp.Get(c)
		if len(uris) == 0 {
			continue
		}
		fmt.Fprintln(app.stdout, TierStyle.Render(c.String()+":"))
		for _, uri := range uris {
			fmt.Fprintf(app.stdout, "  %s\n", uri)
		}
	}
}
