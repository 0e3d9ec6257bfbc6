// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for depot.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/depotkit/depot/internal/metrics"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the depot command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	var metricsServer *http.Server

	root := &cobra.Command{
		Use:   "depot",
		Short: "Artifact identity, dependency graph and artifact cache",
		Long: TitleStyle.Render("depot") + SubtitleStyle.Render(" - artifact identity, dependency graph and artifact cache") + `

depot resolves the resources declared in a library.cue into dependency
closures, build orders and four-tier classpaths, and fetches artifacts
from prioritized remote hosts into a local cache.

` + SubtitleStyle.Render("Examples:") + `
  depot artifact 'artifact:jar:acme/util#1.0'   Show identity derivations
  depot resolve acme/util --transitive          List the dependency closure
  depot classpath acme/app                      Assemble the classpath tiers
  depot fetch 'link:part:acme/widget'           Fetch into the cache
  depot config show --format yaml               Show the configuration`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if app.flags.metricsAddr == "" {
				return nil
			}
			srv, err := serveMetrics(app.flags.metricsAddr)
			if err != nil {
				return err
			}
			metricsServer = srv
			app.logger().Debug("serving metrics", "addr", app.flags.metricsAddr)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if metricsServer == nil {
				return nil
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metricsServer.Shutdown(ctx)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&app.flags.configPath, "config", "", "config file (default is $HOME/.config/depot/config.cue)")
	pf.StringVar(&app.flags.libraryPath, "library", "", "library definition (default is ./library.cue)")
	pf.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&app.flags.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while the command runs")

	root.AddCommand(
		newArtifactCommand(app),
		newResolveCommand(app),
		newPathCommand(app),
		newClasspathCommand(app),
		newOrderCommand(app),
		newFetchCommand(app),
		newInstallCommand(app),
		newPartCommand(app),
		newHostsCommand(app),
		newConfigCommand(app),
	)
	return root
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the depot command tree. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// serveMetrics starts serving the metrics registry on addr.
func serveMetrics(addr string) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for metrics on %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() { _ = srv.Serve(ln) }() // returns http.ErrServerClosed on shutdown
	return srv, nil
}
