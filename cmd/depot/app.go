// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/depotkit/depot/internal/config"
	"github.com/depotkit/depot/internal/issue"
	"github.com/depotkit/depot/pkg/artifact"
	"github.com/depotkit/depot/pkg/library"
	"github.com/depotkit/depot/pkg/part"
	"github.com/depotkit/depot/pkg/transit"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. Every cobra handler
	// receives an App and reaches configuration, the library index and the
	// artifact cache through it.
	App struct {
		Config ConfigProvider
		stdout io.Writer
		stderr io.Writer
		getenv func(string) string
		flags  globalFlags

		// colorScheme is taken from the last loaded configuration.
		colorScheme config.ColorScheme
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Stdout io.Writer
		Stderr io.Writer
		// Getenv replaces the process environment for DEPOT_* overrides.
		Getenv func(string) string
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// globalFlags holds the persistent root flags.
	globalFlags struct {
		configPath  string
		libraryPath string
		verbose     bool
		metricsAddr string
	}

	// session carries the services built for one command invocation.
	session struct {
		cfg    *config.Config
		cache  *transit.Cache
		loader *part.Loader
	}
)

// NewApp creates an App, defaulting unset dependencies.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
		getenv: deps.Getenv,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// loadConfig loads the configuration honoring --config. A verbose setting in
// the file turns on verbose output.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: a.flags.configPath,
		Getenv:         a.getenv,
	})
	if err != nil {
		return nil, err
	}
	if cfg.UI.Verbose {
		a.flags.verbose = true
	}
	a.colorScheme = cfg.UI.ColorScheme
	return cfg, nil
}

// logger returns the CLI logger. Verbose output enables debug logs.
func (a *App) logger() *log.Logger {
	logger := log.NewWithOptions(a.stderr, log.Options{
		Prefix: "depot",
		Level:  log.WarnLevel,
	})
	if a.flags.verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// libraryPath returns the library file named by --library, the config or
// the current directory, in that order.
func (a *App) libraryPath(cfg *config.Config) (string, error) {
	switch {
	case a.flags.libraryPath != "":
		return a.flags.libraryPath, nil
	case cfg.Library != "":
		return cfg.Library, nil
	}
	if info, err := os.Stat(library.DefaultFilename); err == nil && !info.IsDir() {
		return library.DefaultFilename, nil
	}
	return "", issue.NewErrorContext().
		WithOperation("find library").
		WithIssue(issue.LibraryNotFoundId).
		WithSuggestion("Pass --library with the path of a library.cue").
		WithSuggestion("Set library in config.cue or export DEPOT_LIBRARY").
		Wrap(errors.New("no library file configured")).
		BuildError()
}

// loadIndex loads the resource graph.
func (a *App) loadIndex(cfg *config.Config) (*library.Index, error) {
	path, err := a.libraryPath(cfg)
	if err != nil {
		return nil, err
	}
	idx, err := library.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, issue.NewErrorContext().
				WithOperation("load library").
				WithResource(path).
				WithIssue(issue.LibraryNotFoundId).
				WithSuggestion("Check the library path").
				Wrap(err).
				BuildError()
		}
		abs, _ := filepath.Abs(path)
		return nil, issue.NewErrorContext().
			WithOperation("load library").
			WithResource(abs).
			WithIssue(issue.LibraryParseErrorId).
			WithSuggestion("Check the library against the schema shown in the guide").
			Wrap(err).
			BuildError()
	}
	return idx, nil
}

// openSession loads the configuration and builds the cache and the part
// loader. The loader serves the part artifact type of the cache.
func (a *App) openSession(ctx context.Context) (*session, error) {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	d, err := cfg.CacheDirective()
	if err != nil {
		return nil, err
	}
	if !hasContent(d, part.Codebase) {
		d = d.WithContent(transit.ContentDirective{ID: part.Codebase, Title: "Part descriptors", Codebase: part.Codebase})
	}

	logger := a.logger()
	s := &session{cfg: cfg}
	s.cache, err = transit.New(ctx, d,
		transit.WithLogger(logger.WithPrefix("transit")),
		transit.WithContentFactory(part.Codebase, func(transit.ContentDirective) (transit.ContentHandler, error) {
			return transit.ContentHandlerFunc(func(ctx context.Context, art artifact.Artifact, file string) (any, error) {
				return s.loader.ContentHandler().Content(ctx, art, file)
			}), nil
		}),
	)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("open cache").
			WithResource(d.Cache).
			WithIssue(issue.CacheErrorId).
			WithSuggestion("Check the hosts and content handlers declared in config.cue").
			Wrap(err).
			BuildError()
	}
	s.loader = part.NewLoader(s.cache, part.WithLoaderLogger(logger.WithPrefix("part")))
	return s, nil
}

func hasContent(d transit.CacheDirective, id string) bool {
	for _, c := range d.Content {
		if c.ID == id {
			return true
		}
	}
	return false
}
