// SPDX-License-Identifier: MPL-2.0

package part

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/depotkit/depot/internal/metrics"
	"github.com/depotkit/depot/pkg/artifact"
	"github.com/depotkit/depot/pkg/classpath"
	"github.com/depotkit/depot/pkg/transit"
)

// Codebase is the content directive codebase under which a loader serves
// the part artifact type.
const Codebase = "part"

type (
	// Part is a loaded part descriptor bound to its loading unit.
	Part struct {
		Info      Info
		Classpath classpath.Classpath
		Strategy  Strategy
		unit      *Unit
	}

	// Loader loads and caches parts.
	Loader struct {
		repo      Repository
		handlers  map[string]StrategyHandler
		overrides map[string]string
		plugins   map[string]PluginFactory
		builtin   *builtinHandler
		logger    *log.Logger

		parts    sync.Map // cache key -> *Part
		flight   singleflight.Group
		builders sync.Map // handler uri -> StrategyHandler

		waitMu sync.Mutex
		waits  map[string]map[string]int // building key -> keys it waits on
	}

	// LoaderOption configures a Loader.
	LoaderOption func(*Loader)
)

// WithLoaderLogger sets the logger. The default discards output.
func WithLoaderLogger(l *log.Logger) LoaderOption {
	return func(ld *Loader) { ld.logger = l }
}

// WithHandler registers a strategy handler under a handler URI.
func WithHandler(uri string, h StrategyHandler) LoaderOption {
	return func(ld *Loader) { ld.handlers[uri] = h }
}

// WithOverride routes strategy elements of namespace to the handler at uri,
// ahead of every other selection rule.
func WithOverride(namespace, uri string) LoaderOption {
	return func(ld *Loader) { ld.overrides[namespace] = uri }
}

// WithPlugin registers the factory instantiated for plugin parts of class.
func WithPlugin(class string, f PluginFactory) LoaderOption {
	return func(ld *Loader) { ld.plugins[class] = f }
}

// NewLoader creates a loader reading descriptors from repo.
func NewLoader(repo Repository, opts ...LoaderOption) *Loader {
	ld := &Loader{
		repo:      repo,
		handlers:  make(map[string]StrategyHandler),
		overrides: make(map[string]string),
		plugins:   make(map[string]PluginFactory),
		logger:    log.New(io.Discard),
		waits:     make(map[string]map[string]int),
	}
	for _, opt := range opts {
		opt(ld)
	}
	ld.builtin = &builtinHandler{plugins: maps.Clone(ld.plugins)}
	return ld
}

// Unit returns the unit the part's classpath is loaded into.
func (p *Part) Unit() *Unit { return p.unit }

// Instantiate instantiates the part strategy.
func (p *Part) Instantiate(ctx context.Context) (any, error) {
	s, ok := p.Strategy.(Instantiable)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotInstantiable, p.Info.URI)
	}
	return s.Instantiate(ctx)
}

// Descriptor returns the descriptor the part was built from.
func (p *Part) Descriptor() *Descriptor {
	return &Descriptor{Info: p.Info, Classpath: *p.Classpath.Clone(), Strategy: p.Strategy.Element()}
}

// Encode writes the part back as a descriptor document.
func (p *Part) Encode(w io.Writer) error { return p.Descriptor().Encode(w) }

// Load loads the part at url into a unit anchored under anchor (SystemUnit
// when nil). name names the new unit and defaults to the canonical URL.
// With useCache, parts are shared per anchor and canonical URL and a key is
// built at most once at a time; failures are never cached. Without it, the
// part is always rebuilt and not stored. Handler parts that need each other
// fail with ErrHandlerCycle, also when loaded from different goroutines.
func (l *Loader) Load(ctx context.Context, url string, anchor *Unit, name string, useCache bool) (*Part, error) {
	if anchor == nil {
		anchor = SystemUnit()
	}
	canonical, err := l.repo.ResolveLink(ctx, url)
	if err != nil {
		metrics.PartLoads.WithLabelValues(metrics.ResultError).Inc()
		return nil, fmt.Errorf("load part %s: %w", url, err)
	}

	if loading(ctx, canonical) {
		metrics.PartLoads.WithLabelValues(metrics.ResultError).Inc()
		return nil, &DecodingError{Stage: StageStrategy, URI: canonical, Err: ErrHandlerCycle}
	}

	if !useCache {
		return l.build(ctx, canonical, anchor, name)
	}

	key := cacheKey(anchor, canonical)
	if p, ok := l.parts.Load(key); ok {
		metrics.PartLoads.WithLabelValues(metrics.ResultHit).Inc()
		l.logger.Debug("part cache hit", "key", key)
		return p.(*Part), nil
	}

	if parent, ok := ctx.Value(buildingKey{}).(string); ok {
		if !l.await(parent, key) {
			metrics.PartLoads.WithLabelValues(metrics.ResultError).Inc()
			return nil, &DecodingError{Stage: StageStrategy, URI: canonical, Err: ErrHandlerCycle}
		}
		defer l.release(parent, key)
	}

	ch := l.flight.DoChan(key, func() (any, error) {
		if p, ok := l.parts.Load(key); ok {
			return p, nil
		}
		p, err := l.build(context.WithValue(ctx, buildingKey{}, key), canonical, anchor, name)
		if err != nil {
			return nil, err
		}
		l.parts.Store(key, p)
		return p, nil
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load part %s: %w", canonical, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Part), nil
	}
}

// await records that the build of parent waits on key. It reports false when
// the build of key already waits, directly or transitively, on parent.
func (l *Loader) await(parent, key string) bool {
	l.waitMu.Lock()
	defer l.waitMu.Unlock()

	if l.reaches(key, parent, make(map[string]bool)) {
		return false
	}
	if l.waits[parent] == nil {
		l.waits[parent] = make(map[string]int)
	}
	l.waits[parent][key]++
	return true
}

func (l *Loader) release(parent, key string) {
	l.waitMu.Lock()
	defer l.waitMu.Unlock()

	if l.waits[parent][key]--; l.waits[parent][key] <= 0 {
		delete(l.waits[parent], key)
	}
	if len(l.waits[parent]) == 0 {
		delete(l.waits, parent)
	}
}

// reaches reports whether the wait graph leads from one key to another.
// Callers hold waitMu.
func (l *Loader) reaches(from, to string, seen map[string]bool) bool {
	if from == to {
		return true
	}
	if seen[from] {
		return false
	}
	seen[from] = true
	for next := range l.waits[from] {
		if l.reaches(next, to, seen) {
			return true
		}
	}
	return false
}

// Evict removes the cached part for url under anchor and reports whether one was cached.
func (l *Loader) Evict(ctx context.Context, url string, anchor *Unit) (bool, error) {
	if anchor == nil {
		anchor = SystemUnit()
	}
	canonical, err := l.repo.ResolveLink(ctx, url)
	if err != nil {
		return false, fmt.Errorf("evict part %s: %w", url, err)
	}
	_, ok := l.parts.LoadAndDelete(cacheKey(anchor, canonical))
	return ok, nil
}

func (l *Loader) build(ctx context.Context, uri string, anchor *Unit, name string) (*Part, error) {
	p, err := l.decodeAndBuild(ctx, uri, anchor, name)
	if err != nil {
		metrics.PartLoads.WithLabelValues(metrics.ResultError).Inc()
		l.logger.Debug("part load failed", "uri", uri, "err", err)
		return nil, err
	}
	metrics.PartLoads.WithLabelValues(metrics.ResultBuilt).Inc()
	l.logger.Debug("part built", "uri", uri, "unit", p.unit)
	return p, nil
}

func (l *Loader) decodeAndBuild(ctx context.Context, uri string, anchor *Unit, name string) (*Part, error) {
	rc, err := l.repo.Open(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("load part %s: %w", uri, err)
	}
	desc, err := Decode(rc, uri)
	rc.Close()
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = uri
	}
	unit := NewUnit(name, anchor, desc.Classpath, l.repo)

	handler, err := l.handlerFor(withLoading(ctx, uri), uri, &desc.Strategy)
	if err != nil {
		return nil, err
	}
	strategy, err := handler.Build(ctx, BuildContext{Info: desc.Info, Unit: unit, Element: desc.Strategy})
	if err != nil {
		return nil, fmt.Errorf("load part %s: %w", uri, err)
	}
	return &Part{Info: desc.Info, Classpath: desc.Classpath, Strategy: strategy, unit: unit}, nil
}

// handlerFor selects the handler of a strategy element: a namespace
// override, the built-in namespace, the handler attribute, then the part
// linked from the namespace artifact.
func (l *Loader) handlerFor(ctx context.Context, uri string, el *Element) (StrategyHandler, error) {
	ns := el.Name.Space
	if target, ok := l.overrides[ns]; ok {
		return l.handler(ctx, uri, target)
	}
	if ns == Namespace {
		return l.builtin, nil
	}
	if target, ok := el.Attr("handler"); ok && target != "" {
		return l.handler(ctx, uri, target)
	}
	target, err := handlerURI(ns)
	if err != nil {
		return nil, &DecodingError{Stage: StageStrategy, URI: uri, Element: el.Name.Local, Err: err}
	}
	return l.handler(ctx, uri, target)
}

// handlerURI derives link:part:group/name from an artifact namespace.
func handlerURI(namespace string) (string, error) {
	a, err := artifact.Parse(namespace)
	if err != nil {
		return "", fmt.Errorf("namespace %q does not name a handler: %w", namespace, err)
	}
	return "link:part:" + a.Group() + "/" + a.Name(), nil
}

// handler returns the handler registered under target, or loads target as
// a plugin part whose instance is the handler.
func (l *Loader) handler(ctx context.Context, uri, target string) (StrategyHandler, error) {
	if h, ok := l.handlers[target]; ok {
		return h, nil
	}
	if h, ok := l.builders.Load(target); ok {
		return h.(StrategyHandler), nil
	}

	p, err := l.Load(ctx, target, SystemUnit(), "", true)
	if err != nil {
		return nil, &DecodingError{Stage: StageStrategy, URI: uri, Reason: "load handler " + target, Err: err}
	}
	v, err := p.Instantiate(ctx)
	if err != nil {
		return nil, &DecodingError{Stage: StageStrategy, URI: uri, Reason: "instantiate handler " + target, Err: err}
	}
	h, ok := v.(StrategyHandler)
	if !ok {
		return nil, &DecodingError{
			Stage: StageStrategy, URI: uri,
			Reason: fmt.Sprintf("handler %s is a %T, not a strategy handler", target, v),
		}
	}
	actual, _ := l.builders.LoadOrStore(target, h)
	return actual.(StrategyHandler), nil
}

// ContentHandler serves part artifacts through the loader: the content of a
// part artifact is its loaded *Part.
func (l *Loader) ContentHandler() transit.ContentHandler {
	return transit.ContentHandlerFunc(func(ctx context.Context, a artifact.Artifact, _ string) (any, error) {
		return l.Load(ctx, a.String(), nil, "", true)
	})
}

type (
	loadingKey  struct{}
	buildingKey struct{} // cache key of the part built by the current flight
)

// withLoading records uri in the chain of parts whose handlers are being resolved.
func withLoading(ctx context.Context, uri string) context.Context {
	chain, _ := ctx.Value(loadingKey{}).([]string)
	return context.WithValue(ctx, loadingKey{}, append(slices.Clone(chain), uri))
}

func loading(ctx context.Context, uri string) bool {
	chain, _ := ctx.Value(loadingKey{}).([]string)
	return slices.Contains(chain, uri)
}

func cacheKey(anchor *Unit, canonical string) string {
	return anchor.ID() + "#" + canonical
}
