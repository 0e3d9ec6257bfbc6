// SPDX-License-Identifier: MPL-2.0

package transit

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

const (
	// CachePathEnv overrides the default cache directory.
	CachePathEnv = "DEPOT_CACHE"
	// LocalPathEnv overrides the default local repository directory.
	LocalPathEnv = "DEPOT_LOCAL"

	// DefaultHostPriority is used for hosts that do not declare a priority.
	DefaultHostPriority = 100
)

type (
	// CacheDirective configures a Cache.
	CacheDirective struct {
		// Cache is the cache root directory.
		Cache string `json:"cache" yaml:"cache" toml:"cache"`
		// Local is a local repository consulted before the cache. Optional.
		Local string `json:"local,omitempty" yaml:"local,omitempty" toml:"local,omitempty"`
		// Layout is the id of the default layout.
		Layout string `json:"layout,omitempty" yaml:"layout,omitempty" toml:"layout,omitempty"`
		// Timeout bounds each remote fetch. Zero means no limit.
		Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"timeout,omitempty"`

		Layouts []LayoutDirective  `json:"layouts,omitempty" yaml:"layouts,omitempty" toml:"layouts,omitempty"`
		Hosts   []HostDirective    `json:"hosts,omitempty" yaml:"hosts,omitempty" toml:"hosts,omitempty"`
		Content []ContentDirective `json:"content,omitempty" yaml:"content,omitempty" toml:"content,omitempty"`
		Proxy   *ProxyDirective    `json:"proxy,omitempty" yaml:"proxy,omitempty" toml:"proxy,omitempty"`
	}

	// HostDirective describes a remote artifact host.
	HostDirective struct {
		ID       string `json:"id" yaml:"id" toml:"id"`
		Priority int    `json:"priority" yaml:"priority" toml:"priority"`
		// Host is the base URL: file://, http://, https:// or s3://bucket/prefix.
		Host string `json:"host" yaml:"host" toml:"host"`
		// Index is a path, relative to Host, of a file listing the groups the host serves.
		Index    string `json:"index,omitempty" yaml:"index,omitempty" toml:"index,omitempty"`
		Username string `json:"username,omitempty" yaml:"username,omitempty" toml:"username,omitempty"`
		Password string `json:"password,omitempty" yaml:"password,omitempty" toml:"password,omitempty"`
		Enabled  bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
		Trusted  bool   `json:"trusted" yaml:"trusted" toml:"trusted"`
		// Layout overrides the default layout for this host.
		Layout string `json:"layout,omitempty" yaml:"layout,omitempty" toml:"layout,omitempty"`
		// Scheme is the authentication scheme: basic (default) or bearer.
		Scheme string `json:"scheme,omitempty" yaml:"scheme,omitempty" toml:"scheme,omitempty"`
		// Prompt is the realm shown when asking for credentials.
		Prompt string `json:"prompt,omitempty" yaml:"prompt,omitempty" toml:"prompt,omitempty"`
		// RateLimit caps requests per second. Zero means unlimited.
		RateLimit float64 `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty" toml:"rate_limit,omitempty" mapstructure:"rate_limit"`
		// Endpoint overrides the service endpoint of s3 hosts.
		Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" toml:"endpoint,omitempty"`
		// Region is the region of s3 hosts.
		Region string `json:"region,omitempty" yaml:"region,omitempty" toml:"region,omitempty"`
	}

	// ProxyDirective configures an HTTP proxy for remote hosts.
	ProxyDirective struct {
		Host string `json:"host" yaml:"host" toml:"host"`
		// Excludes lists host name patterns (path.Match syntax) that are never contacted.
		Excludes []string `json:"excludes,omitempty" yaml:"excludes,omitempty" toml:"excludes,omitempty"`
		Username string   `json:"username,omitempty" yaml:"username,omitempty" toml:"username,omitempty"`
		Password string   `json:"password,omitempty" yaml:"password,omitempty" toml:"password,omitempty"`
	}

	// ContentDirective binds an artifact type to a content handler.
	ContentDirective struct {
		// ID is the artifact type handled.
		ID    string `json:"id" yaml:"id" toml:"id"`
		Title string `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
		// Codebase names the handler implementation registered with the cache.
		Codebase   string      `json:"codebase" yaml:"codebase" toml:"codebase"`
		Parameters []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty" toml:"parameters,omitempty"`
	}

	// Parameter is a named handler parameter.
	Parameter struct {
		Key   string `json:"key" yaml:"key" toml:"key"`
		Value string `json:"value" yaml:"value" toml:"value"`
	}

	// LayoutDirective declares a pattern layout. Base and Filename may use the
	// tokens {group}, {name}, {version}, {type} and {-version} (a dash followed
	// by the version, or nothing for unversioned artifacts).
	LayoutDirective struct {
		ID       string `json:"id" yaml:"id" toml:"id"`
		Title    string `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
		Base     string `json:"base" yaml:"base" toml:"base"`
		Filename string `json:"filename" yaml:"filename" toml:"filename"`
	}
)

// DefaultCacheDir returns the default cache directory.
// It checks DEPOT_CACHE first, then falls back to the user cache directory.
func DefaultCacheDir() (string, error) {
	return DefaultCacheDirWith(os.Getenv)
}

// DefaultCacheDirWith is DefaultCacheDir with an injectable environment lookup.
func DefaultCacheDirWith(getenv func(string) string) (string, error) {
	if dir := getenv(CachePathEnv); dir != "" {
		return dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %w", err)
	}
	return filepath.Join(base, "depot"), nil
}

// Param returns the value of the named parameter.
func (d ContentDirective) Param(key string) (string, bool) {
	for _, p := range d.Parameters {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Equal reports whether both directives hold the same values.
func (d ContentDirective) Equal(other ContentDirective) bool {
	return d.ID == other.ID && d.Title == other.Title && d.Codebase == other.Codebase &&
		slices.Equal(d.Parameters, other.Parameters)
}

// Equal reports whether both directives hold the same values.
func (d *ProxyDirective) Equal(other *ProxyDirective) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.Host == other.Host && d.Username == other.Username && d.Password == other.Password &&
		slices.Equal(d.Excludes, other.Excludes)
}

// Excluded reports whether hostname matches one of the exclude patterns.
func (d *ProxyDirective) Excluded(hostname string) bool {
	if d == nil || hostname == "" {
		return false
	}
	return matchesAny(d.Excludes, hostname)
}

// Equal reports whether both directives hold the same values.
func (d CacheDirective) Equal(other CacheDirective) bool {
	return d.Cache == other.Cache && d.Local == other.Local && d.Layout == other.Layout &&
		d.Timeout == other.Timeout &&
		slices.Equal(d.Layouts, other.Layouts) &&
		slices.Equal(d.Hosts, other.Hosts) &&
		slices.EqualFunc(d.Content, other.Content, ContentDirective.Equal) &&
		d.Proxy.Equal(other.Proxy)
}

// Host returns the host directive with the given id.
func (d CacheDirective) Host(id string) (HostDirective, bool) {
	i := slices.IndexFunc(d.Hosts, func(h HostDirective) bool { return h.ID == id })
	if i < 0 {
		return HostDirective{}, false
	}
	return d.Hosts[i], true
}

// WithHost returns a copy of d with h added, replacing a host with the same id.
func (d CacheDirective) WithHost(h HostDirective) CacheDirective {
	out := d.clone()
	if i := slices.IndexFunc(out.Hosts, func(x HostDirective) bool { return x.ID == h.ID }); i >= 0 {
		out.Hosts[i] = h
		return out
	}
	out.Hosts = append(out.Hosts, h)
	return out
}

// WithoutHost returns a copy of d without the host with the given id.
func (d CacheDirective) WithoutHost(id string) CacheDirective {
	out := d.clone()
	out.Hosts = slices.DeleteFunc(out.Hosts, func(h HostDirective) bool { return h.ID == id })
	return out
}

// WithLayout returns a copy of d with l added, replacing a layout with the same id.
func (d CacheDirective) WithLayout(l LayoutDirective) CacheDirective {
	out := d.clone()
	if i := slices.IndexFunc(out.Layouts, func(x LayoutDirective) bool { return x.ID == l.ID }); i >= 0 {
		out.Layouts[i] = l
		return out
	}
	out.Layouts = append(out.Layouts, l)
	return out
}

// WithContent returns a copy of d with c added, replacing a binding for the same type.
func (d CacheDirective) WithContent(c ContentDirective) CacheDirective {
	out := d.clone()
	if i := slices.IndexFunc(out.Content, func(x ContentDirective) bool { return x.ID == c.ID }); i >= 0 {
		out.Content[i] = c
		return out
	}
	out.Content = append(out.Content, c)
	return out
}

// WithProxy returns a copy of d using p. A nil p removes the proxy.
func (d CacheDirective) WithProxy(p *ProxyDirective) CacheDirective {
	out := d.clone()
	if p != nil {
		cp := *p
		cp.Excludes = slices.Clone(p.Excludes)
		out.Proxy = &cp
	} else {
		out.Proxy = nil
	}
	return out
}

func (d CacheDirective) clone() CacheDirective {
	out := d
	out.Layouts = slices.Clone(d.Layouts)
	out.Hosts = slices.Clone(d.Hosts)
	out.Content = make([]ContentDirective, len(d.Content))
	for i, c := range d.Content {
		c.Parameters = slices.Clone(c.Parameters)
		out.Content[i] = c
	}
	if d.Proxy != nil {
		p := *d.Proxy
		p.Excludes = slices.Clone(d.Proxy.Excludes)
		out.Proxy = &p
	}
	return out
}

// Validate checks required fields and cross references.
func (d CacheDirective) Validate() error {
	var errs []string
	if strings.TrimSpace(d.Cache) == "" {
		errs = append(errs, "cache directory is required")
	}

	layouts := map[string]bool{ClassicLayoutID: true, EclipseLayoutID: true}
	for i, l := range d.Layouts {
		switch {
		case l.ID == "":
			errs = append(errs, fmt.Sprintf("layouts[%d]: id is required", i))
		case l.Filename == "":
			errs = append(errs, fmt.Sprintf("layouts[%d] %q: filename is required", i, l.ID))
		}
		layouts[l.ID] = true
	}
	if d.Layout != "" && !layouts[d.Layout] {
		errs = append(errs, fmt.Sprintf("default layout %q is not defined", d.Layout))
	}

	ids := make(map[string]bool, len(d.Hosts))
	for i, h := range d.Hosts {
		if h.ID == "" {
			errs = append(errs, fmt.Sprintf("hosts[%d]: id is required", i))
		} else if ids[h.ID] {
			errs = append(errs, fmt.Sprintf("hosts[%d]: duplicate id %q", i, h.ID))
		}
		ids[h.ID] = true
		if u, err := url.Parse(h.Host); err != nil || u.Scheme == "" {
			errs = append(errs, fmt.Sprintf("hosts[%d] %q: host must be an absolute URL", i, h.ID))
		}
		if h.Layout != "" && !layouts[h.Layout] {
			errs = append(errs, fmt.Sprintf("hosts[%d] %q: layout %q is not defined", i, h.ID, h.Layout))
		}
		if h.RateLimit < 0 {
			errs = append(errs, fmt.Sprintf("hosts[%d] %q: rate_limit must not be negative", i, h.ID))
		}
	}

	for i, c := range d.Content {
		if c.ID == "" || c.Codebase == "" {
			errs = append(errs, fmt.Sprintf("content[%d]: id and codebase are required", i))
		}
	}
	if d.Proxy != nil && d.Proxy.Host != "" {
		if _, err := url.Parse(d.Proxy.Host); err != nil {
			errs = append(errs, fmt.Sprintf("proxy: invalid host %q", d.Proxy.Host))
		}
	}
	if d.Timeout < 0 {
		errs = append(errs, "timeout must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDirective, strings.Join(errs, "; "))
	}
	return nil
}
