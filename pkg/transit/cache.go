// SPDX-License-Identifier: MPL-2.0

package transit

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/depotkit/depot/internal/metrics"
	"github.com/depotkit/depot/pkg/artifact"
)

const (
	// LinkSuffix is appended to the path of link files.
	LinkSuffix = ".link"

	maxLinkDepth = 8
	versionToken = "0.0.0-depot-version"
)

type (
	// Cache resolves artifact URIs to local files.
	Cache struct {
		snap       atomic.Pointer[snapshot]
		flight     singleflight.Group
		factories  map[string]ContentFactory
		httpClient *http.Client
		s3         s3API
		logger     *log.Logger
	}

	// Option configures a Cache.
	Option func(*Cache)

	// snapshot is everything derived from one directive.
	snapshot struct {
		directive CacheDirective
		layouts   *LayoutRegistry
		hosts     []Host
		handlers  map[string]ContentHandler
	}
)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// WithHTTPClient sets the client used by http and s3 hosts. The default
// client honours the directive proxy.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Cache) { c.httpClient = client }
}

// WithContentFactory registers a content handler factory under a codebase name.
func WithContentFactory(codebase string, f ContentFactory) Option {
	return func(c *Cache) { c.factories[codebase] = f }
}

func withS3API(api s3API) Option {
	return func(c *Cache) { c.s3 = api }
}

// New creates a cache. An empty cache directory defaults to DefaultCacheDir.
func New(ctx context.Context, d CacheDirective, opts ...Option) (*Cache, error) {
	c := &Cache{
		factories: map[string]ContentFactory{ArchiveCodebase: newArchiveHandler},
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.Update(ctx, d); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the active directive. Readers see either the old or the
// new directive, never a mix.
func (c *Cache) Update(ctx context.Context, d CacheDirective) error {
	if d.Cache == "" {
		dir, err := DefaultCacheDir()
		if err != nil {
			return err
		}
		d.Cache = dir
	}
	d = d.clone()
	if err := d.Validate(); err != nil {
		return err
	}

	layouts, err := NewLayoutRegistry(d.Layout, d.Layouts...)
	if err != nil {
		return err
	}
	hosts := make([]Host, 0, len(d.Hosts))
	for _, hd := range d.Hosts {
		h, err := newHost(ctx, hd, layouts, hostOptions{proxy: d.Proxy, httpClient: c.httpClient, s3: c.s3})
		if err != nil {
			return err
		}
		hosts = append(hosts, h)
	}
	slices.SortStableFunc(hosts, func(a, b Host) int {
		if a.Priority() != b.Priority() {
			return a.Priority() - b.Priority()
		}
		return strings.Compare(a.ID(), b.ID())
	})
	handlers, err := buildHandlers(d.Content, c.factories)
	if err != nil {
		return err
	}

	c.snap.Store(&snapshot{directive: d, layouts: layouts, hosts: hosts, handlers: handlers})
	c.logger.Debug("directive applied", "cache", d.Cache, "hosts", len(hosts), "layout", layouts.Default().ID())
	return nil
}

// Directive returns a copy of the active directive.
func (c *Cache) Directive() CacheDirective { return c.snap.Load().directive.clone() }

// Layouts returns the active layout registry.
func (c *Cache) Layouts() *LayoutRegistry { return c.snap.Load().layouts }

// Hosts returns the hosts in selection order: priority ascending, then id.
func (c *Cache) Hosts() []Host { return slices.Clone(c.snap.Load().hosts) }

// Path returns the cache location of an artifact or link URI without touching the file system.
func (c *Cache) Path(uri string) (string, error) {
	a, err := artifact.Parse(uri)
	if err != nil {
		return "", err
	}
	snap := c.snap.Load()
	return filepath.Join(snap.root(a), filepath.FromSlash(snap.rel(snap.layouts.Default(), a))), nil
}

// Resolve returns a local file for uri, downloading it into the cache if
// needed. For internal references the enclosing archive is returned.
// Lookup order: local repository, cache, hosts.
func (c *Cache) Resolve(ctx context.Context, uri string) (string, error) {
	a, err := artifact.Parse(uri)
	if err != nil {
		return "", err
	}
	a = a.WithoutInternal()
	snap := c.snap.Load()
	rel := snap.rel(snap.layouts.Default(), a)

	if a.Scheme() == artifact.SchemeLocal {
		p := filepath.Join(snap.root(a), filepath.FromSlash(rel))
		if !isFile(p) {
			return "", &ArtifactNotFoundError{URI: a.String()}
		}
		return p, nil
	}

	if local := snap.directive.Local; local != "" {
		if p := filepath.Join(local, filepath.FromSlash(rel)); isFile(p) {
			metrics.CacheLookups.WithLabelValues(metrics.ResultLocal).Inc()
			c.logger.Debug("local repository hit", "uri", a, "path", p)
			return p, nil
		}
	}

	dest := filepath.Join(snap.directive.Cache, filepath.FromSlash(rel))
	if isFile(dest) {
		metrics.CacheLookups.WithLabelValues(metrics.ResultHit).Inc()
		c.logger.Debug("cache hit", "uri", a, "path", dest)
		return dest, nil
	}

	v, err, _ := c.flight.Do(dest, func() (any, error) {
		if isFile(dest) {
			return dest, nil
		}
		metrics.CacheLookups.WithLabelValues(metrics.ResultMiss).Inc()
		return c.download(ctx, snap, a, dest)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Cache) download(ctx context.Context, snap *snapshot, a artifact.Artifact, dest string) (string, error) {
	hosts := c.candidates(ctx, snap, a)
	consulted := make([]string, 0, len(hosts))
	var cause error

	for _, h := range hosts {
		consulted = append(consulted, h.ID())
		rel := snap.rel(h.Layout(), a)

		fetchCtx, cancel := snap.withTimeout(ctx)
		start := time.Now()
		rc, modTime, err := h.Fetch(fetchCtx, rel)
		if errors.Is(err, errNotFound) {
			cancel()
			metrics.Downloads.WithLabelValues(h.ID(), metrics.OutcomeNotFound).Inc()
			continue
		}
		if err != nil {
			cancel()
			metrics.Downloads.WithLabelValues(h.ID(), metrics.OutcomeError).Inc()
			c.logger.Warn("download failed", "host", h.ID(), "path", rel, "err", err)
			cause = err
			continue
		}

		err = writeFile(dest, rc, modTime)
		rc.Close()
		cancel()
		if err != nil {
			metrics.Downloads.WithLabelValues(h.ID(), metrics.OutcomeError).Inc()
			return "", err
		}
		metrics.Downloads.WithLabelValues(h.ID(), metrics.OutcomeOK).Inc()
		metrics.DownloadDuration.WithLabelValues(h.ID()).Observe(time.Since(start).Seconds())
		c.logger.Info("downloaded", "uri", a, "host", h.ID())
		return dest, nil
	}

	return "", &ArtifactNotFoundError{URI: a.String(), Hosts: consulted, Cause: cause}
}

// candidates returns the hosts to try for a, in order: hosts whose index
// lists the group, then trusted hosts. Disabled hosts and hosts excluded by
// the proxy directive are skipped.
func (c *Cache) candidates(ctx context.Context, snap *snapshot, a artifact.Artifact) []Host {
	var known, others []Host
	for _, h := range snap.hosts {
		if !h.Enabled() || snap.directive.Proxy.Excluded(hostname(h.Directive().Host)) {
			continue
		}
		groups, err := h.KnownGroups(ctx)
		if err != nil {
			c.logger.Debug("host index unavailable", "host", h.ID(), "err", err)
		}
		switch {
		case servesGroup(groups, a.Group()):
			known = append(known, h)
		case h.Trusted():
			others = append(others, h)
		}
	}
	return append(known, others...)
}

// Locate returns the ids of the eligible hosts that hold uri.
func (c *Cache) Locate(ctx context.Context, uri string) ([]string, error) {
	a, err := artifact.Parse(uri)
	if err != nil {
		return nil, err
	}
	a = a.WithoutInternal()
	snap := c.snap.Load()

	var ids []string
	for _, h := range c.candidates(ctx, snap, a) {
		checkCtx, cancel := snap.withTimeout(ctx)
		ok, err := h.Exists(checkCtx, snap.rel(h.Layout(), a))
		cancel()
		if err != nil {
			c.logger.Warn("presence check failed", "host", h.ID(), "err", err)
			continue
		}
		if ok {
			ids = append(ids, h.ID())
		}
	}
	return ids, nil
}

// ResolveLink follows link: URIs to the URI they point to. Other URIs are returned unchanged.
func (c *Cache) ResolveLink(ctx context.Context, uri string) (string, error) {
	current := uri
	for range maxLinkDepth {
		a, err := artifact.Parse(current)
		if err != nil || !a.IsLink() {
			return current, nil
		}
		file, err := c.Resolve(ctx, current)
		if err != nil {
			return "", fmt.Errorf("resolve link %s: %w", current, err)
		}
		target, err := readLink(file)
		if err != nil {
			return "", fmt.Errorf("resolve link %s: %w", current, err)
		}
		c.logger.Debug("link resolved", "link", current, "target", target)
		current = target
	}
	return "", fmt.Errorf("resolve link %s: more than %d levels of indirection", uri, maxLinkDepth)
}

// Open opens uri for reading. Artifact, link and local URIs are resolved
// through the cache; file: URLs and plain paths are opened directly.
// Internal references (!/entry) read the entry from the zip archive.
func (c *Cache) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if !artifact.IsArtifactURI(uri) {
		p, err := filePath(uri)
		if err != nil {
			return nil, err
		}
		return os.Open(p)
	}
	a, err := artifact.Parse(uri)
	if err != nil {
		return nil, err
	}
	if a.IsLink() {
		target, err := c.ResolveLink(ctx, a.WithoutInternal().String())
		if err != nil {
			return nil, err
		}
		if a.IsInternal() {
			target += "!" + a.Internal()
		}
		return c.Open(ctx, target)
	}

	file, err := c.Resolve(ctx, uri)
	if err != nil {
		return nil, err
	}
	if a.IsInternal() {
		return openEntry(file, a.Internal())
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, &CacheError{Op: "open", Path: file, Err: err}
	}
	return f, nil
}

// Content resolves uri and passes it to the content handler bound to its
// type. Types without a handler yield the local file path.
func (c *Cache) Content(ctx context.Context, uri string) (any, error) {
	target, err := c.ResolveLink(ctx, uri)
	if err != nil {
		return nil, err
	}
	a, err := artifact.Parse(target)
	if err != nil {
		return nil, err
	}
	file, err := c.Resolve(ctx, target)
	if err != nil {
		return nil, err
	}
	h, ok := c.snap.Load().handlers[a.Type()]
	if !ok {
		return file, nil
	}
	return h.Content(ctx, a, file)
}

// Install writes r into the cache at the location of uri. Existing
// artifacts are never overwritten; link files may be replaced.
func (c *Cache) Install(uri string, r io.Reader) (string, error) {
	a, err := artifact.Parse(uri)
	if err != nil {
		return "", err
	}
	if a.IsInternal() {
		return "", fmt.Errorf("install %s: cannot install an archive entry", uri)
	}
	dest, err := c.Path(uri)
	if err != nil {
		return "", err
	}
	if !a.IsLink() && isFile(dest) {
		return "", fmt.Errorf("install %s: %w: %s", uri, ErrArtifactExists, dest)
	}
	if err := writeFile(dest, r, time.Time{}); err != nil {
		return "", err
	}
	return dest, nil
}

// Versions lists the cached versions of an artifact, newest first.
func (c *Cache) Versions(group, name, typ string) ([]string, error) {
	a, err := artifact.Parse("artifact:" + typ + ":" + group + "/" + name + "#" + versionToken)
	if err != nil {
		return nil, err
	}
	snap := c.snap.Load()
	rel := snap.layouts.Default().ResolvePath(a)
	if strings.Count(rel, versionToken) != 1 {
		return nil, fmt.Errorf("layout %q does not support version listing", snap.layouts.Default().ID())
	}
	prefix, suffix, _ := strings.Cut(rel, versionToken)

	pattern := filepath.Join(snap.directive.Cache, filepath.FromSlash(escapeGlob(prefix)+"*"+escapeGlob(suffix)))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	var versions []string
	for _, m := range matches {
		r, err := filepath.Rel(snap.directive.Cache, m)
		if err != nil {
			continue
		}
		v := strings.TrimSuffix(strings.TrimPrefix(filepath.ToSlash(r), prefix), suffix)
		if v == "" || strings.Contains(v, "/") || !isFile(m) {
			continue
		}
		versions = append(versions, v)
	}
	return artifact.SortVersions(versions), nil
}

// rel is the path of a under layout; links get LinkSuffix.
func (s *snapshot) rel(layout Layout, a artifact.Artifact) string {
	rel := layout.ResolvePath(a.WithScheme(artifact.SchemeArtifact).WithoutInternal())
	if a.IsLink() {
		rel += LinkSuffix
	}
	return rel
}

// root is the directory holding a: the local repository for local URIs
// (falling back to the cache), the cache otherwise.
func (s *snapshot) root(a artifact.Artifact) string {
	if a.Scheme() == artifact.SchemeLocal && s.directive.Local != "" {
		return s.directive.Local
	}
	return s.directive.Cache
}

func (s *snapshot) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.directive.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.directive.Timeout)
}

// writeFile writes r to dest through a temporary file in the same directory.
func writeFile(dest string, r io.Reader, modTime time.Time) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &CacheError{Op: "mkdir", Path: dir, Err: err}
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return &CacheError{Op: "create", Path: dest, Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		cleanup()
		return &CacheError{Op: "write", Path: dest, Err: err}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return &CacheError{Op: "write", Path: dest, Err: err}
	}
	if !modTime.IsZero() {
		if err := os.Chtimes(tmpName, modTime, modTime); err != nil {
			cleanup()
			return &CacheError{Op: "chtimes", Path: dest, Err: err}
		}
	}
	if err := os.Rename(tmpName, dest); err != nil {
		cleanup()
		return &CacheError{Op: "rename", Path: dest, Err: err}
	}
	return nil
}

// readLink returns the first line of a link file that is neither blank nor a # comment.
func readLink(file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", &CacheError{Op: "open", Path: file, Err: err}
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			return line, nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", &CacheError{Op: "read", Path: file, Err: err}
	}
	return "", fmt.Errorf("link file %s is empty", file)
}

func filePath(uri string) (string, error) {
	if !strings.HasPrefix(uri, "file:") {
		return uri, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid file url %q: %w", uri, err)
	}
	return filepath.FromSlash(u.Path), nil
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

func escapeGlob(s string) string {
	return strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`, `\`, `\\`).Replace(s)
}
