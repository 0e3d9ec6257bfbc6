// SPDX-License-Identifier: MPL-2.0

package transit

import (
	"path"
	"strings"
	"sync"

	"github.com/depotkit/depot/pkg/artifact"
)

const (
	// ClassicLayoutID places artifacts at group/{type}s/name[-version].type.
	ClassicLayoutID = "classic"
	// EclipseLayoutID places artifacts at group[-version]/name.type.
	EclipseLayoutID = "eclipse"
)

type (
	// Layout maps an artifact to a slash separated path relative to a repository root.
	Layout interface {
		ID() string
		// ResolveBase returns the directory holding the artifact.
		ResolveBase(a artifact.Artifact) string
		// ResolvePath returns the full relative path of the artifact.
		ResolvePath(a artifact.Artifact) string
	}

	classicLayout struct{}

	eclipseLayout struct{}

	// PatternLayout is a Layout built from a LayoutDirective.
	PatternLayout struct {
		directive LayoutDirective
	}

	// LayoutRegistry holds the built-in and configured layouts.
	LayoutRegistry struct {
		mu      sync.RWMutex
		layouts map[string]Layout
		def     string
	}
)

func (classicLayout) ID() string { return ClassicLayoutID }

func (classicLayout) ResolveBase(a artifact.Artifact) string {
	return a.Group() + "/" + a.Type() + "s"
}

func (l classicLayout) ResolvePath(a artifact.Artifact) string {
	return l.ResolveBase(a) + "/" + a.Info().Filename("")
}

func (eclipseLayout) ID() string { return EclipseLayoutID }

func (eclipseLayout) ResolveBase(a artifact.Artifact) string {
	if a.Version() == "" {
		return a.Group()
	}
	return a.Group() + "-" + a.Version()
}

func (l eclipseLayout) ResolvePath(a artifact.Artifact) string {
	return l.ResolveBase(a) + "/" + a.Name() + "." + a.Type()
}

// NewPatternLayout creates a layout from a directive.
func NewPatternLayout(d LayoutDirective) *PatternLayout {
	return &PatternLayout{directive: d}
}

// ID returns the directive id.
func (l *PatternLayout) ID() string { return l.directive.ID }

// ResolveBase expands the base pattern.
func (l *PatternLayout) ResolveBase(a artifact.Artifact) string {
	return path.Clean(expand(l.directive.Base, a))
}

// ResolvePath joins the expanded base and filename patterns.
func (l *PatternLayout) ResolvePath(a artifact.Artifact) string {
	return path.Join(l.ResolveBase(a), expand(l.directive.Filename, a))
}

func expand(pattern string, a artifact.Artifact) string {
	dashVersion := ""
	if a.Version() != "" {
		dashVersion = "-" + a.Version()
	}
	return strings.NewReplacer(
		"{group}", a.Group(),
		"{name}", a.Name(),
		"{-version}", dashVersion,
		"{version}", a.Version(),
		"{type}", a.Type(),
	).Replace(pattern)
}

// NewLayoutRegistry returns a registry with the built-in layouts, the
// configured pattern layouts and the given default (classic when empty).
func NewLayoutRegistry(def string, directives ...LayoutDirective) (*LayoutRegistry, error) {
	r := &LayoutRegistry{
		layouts: map[string]Layout{
			ClassicLayoutID: classicLayout{},
			EclipseLayoutID: eclipseLayout{},
		},
		def: ClassicLayoutID,
	}
	for _, d := range directives {
		r.Register(NewPatternLayout(d))
	}
	if def != "" {
		if _, ok := r.layouts[def]; !ok {
			return nil, &UnknownLayoutError{ID: def}
		}
		r.def = def
	}
	return r, nil
}

// Register adds or replaces a layout.
func (r *LayoutRegistry) Register(l Layout) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layouts[l.ID()] = l
}

// Layout returns the layout registered under id.
func (r *LayoutRegistry) Layout(id string) (Layout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.layouts[id]
	if !ok {
		return nil, &UnknownLayoutError{ID: id}
	}
	return l, nil
}

// Default returns the default layout.
func (r *LayoutRegistry) Default() Layout {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.layouts[r.def]
}

// Resolve returns the layout for a host override: the override when set and
// registered, otherwise the default layout, otherwise classic.
func (r *LayoutRegistry) Resolve(override string) Layout {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if l, ok := r.layouts[override]; ok && override != "" {
		return l
	}
	if l, ok := r.layouts[r.def]; ok {
		return l
	}
	return classicLayout{}
}
