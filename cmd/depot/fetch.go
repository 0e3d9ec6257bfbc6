// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// defaultFetchJobs bounds concurrent downloads of `depot fetch`.
const defaultFetchJobs = 4

type fetchResult struct {
	uri    string
	target string
	path   string
	hosts  []string
}

// newFetchCommand creates the `depot fetch` command.
func newFetchCommand(app *App) *cobra.Command {
	var (
		jobs   int
		locate bool
		follow bool
	)

	cmd := &cobra.Command{
		Use:   "fetch <uri>...",
		Short: "Download artifacts into the cache",
		Long: `Download artifacts into the cache and print their local paths.

Artifacts are looked up in the local repository, then the cache, then the
enabled hosts in priority order. With --locate nothing is downloaded and the
hosts holding each artifact are listed instead.`,
		Example: `  depot fetch 'artifact:jar:org/acme/util#1.2'
  depot fetch --follow 'link:part:org/acme/widget'
  depot fetch --locate 'artifact:jar:org/acme/util#1.2'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := app.openSession(ctx)
			if err != nil {
				return app.fail(err)
			}

			results := make([]fetchResult, len(args))
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(max(jobs, 1))
			for i, uri := range args {
				g.Go(func() error {
					res := fetchResult{uri: uri, target: uri}
					if follow {
						target, err := s.cache.ResolveLink(gctx, uri)
						if err != nil {
							return err
						}
						res.target = target
					}
					if locate {
						hosts, err := s.cache.Locate(gctx, res.target)
						if err != nil {
							return err
						}
						res.hosts = hosts
					} else {
						p, err := s.cache.Resolve(gctx, res.target)
						if err != nil {
							return err
						}
						res.path = p
					}
					results[i] = res
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return app.fail(err)
			}

			for _, res := range results {
				label := res.uri
				if res.target != res.uri {
					label += " -> " + res.target
				}
				switch {
				case locate && len(res.hosts) == 0:
					fmt.Fprintf(app.stdout, "%s %s\n", KeyStyle.Render(label), TierStyle.Render("(no host)"))
				case locate:
					fmt.Fprintf(app.stdout, "%s %s\n", KeyStyle.Render(label), PathStyle.Render(strings.Join(res.hosts, ", ")))
				default:
					fmt.Fprintf(app.stdout, "%s %s\n", KeyStyle.Render(label), PathStyle.Render(res.path))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", defaultFetchJobs, "number of concurrent downloads")
	cmd.Flags().BoolVar(&locate, "locate", false, "list the hosts holding each artifact instead of downloading")
	cmd.Flags().BoolVar(&follow, "follow", false, "follow link: URIs to their targets first")
	return cmd
}

// newInstallCommand creates the `depot install` command.
func newInstallCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "install <uri> <file>",
		Short: "Copy a local file into the cache",
		Long: `Copy a local file into the cache under the location of an artifact URI.

Existing artifacts are never overwritten. Link files may be replaced.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession(cmd.Context())
			if err != nil {
				return app.fail(err)
			}
			f, err := os.Open(args[1])
			if err != nil {
				return app.fail(err)
			}
			defer f.Close()

			dest, err := s.cache.Install(args[0], f)
			if err != nil {
				return app.fail(err)
			}
			fmt.Fprintf(app.stdout, "%s %s\n", PathStyle.Render("installed"), dest)
			return nil
		},
	}
}
