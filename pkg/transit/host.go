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
	"strings"
	"sync"
	"time"
)

type (
	// Host is a remote artifact repository.
	Host interface {
		ID() string
		Priority() int
		Enabled() bool
		Trusted() bool
		Layout() Layout
		// Directive returns the directive the host was created from.
		Directive() HostDirective
		// KnownGroups returns the groups listed in the host index.
		// Hosts without an index know no groups.
		KnownGroups(ctx context.Context) ([]string, error)
		// Exists reports whether rel is present on the host.
		Exists(ctx context.Context, rel string) (bool, error)
		// Fetch opens rel. Missing resources yield an error matching errNotFound.
		Fetch(ctx context.Context, rel string) (io.ReadCloser, time.Time, error)
	}

	// transport is the scheme specific part of a host.
	transport interface {
		exists(ctx context.Context, rel string) (bool, error)
		fetch(ctx context.Context, rel string) (io.ReadCloser, time.Time, error)
	}

	// hostOptions carries shared collaborators into host constructors.
	hostOptions struct {
		proxy      *ProxyDirective
		httpClient *http.Client
		s3         s3API
	}

	// remoteHost implements Host on top of a transport.
	remoteHost struct {
		directive HostDirective
		layout    Layout
		transport transport

		groupsMu sync.Mutex
		groups   []string
		loaded   bool
	}
)

// newHost creates the host for a directive, choosing the transport from the URL scheme.
func newHost(ctx context.Context, d HostDirective, layouts *LayoutRegistry, opts hostOptions) (Host, error) {
	if d.Priority == 0 {
		d.Priority = DefaultHostPriority
	}
	u, err := url.Parse(d.Host)
	if err != nil {
		return nil, fmt.Errorf("host %q: invalid url %q: %w", d.ID, d.Host, err)
	}

	var t transport
	switch strings.ToLower(u.Scheme) {
	case "file":
		t = newFileTransport(u)
	case "http", "https":
		t, err = newHTTPTransport(d, u, opts)
	case "s3":
		t, err = newS3Transport(ctx, d, u, opts)
	default:
		err = fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if err != nil {
		return nil, fmt.Errorf("host %q: %w", d.ID, err)
	}

	return &remoteHost{
		directive: d,
		layout:    layouts.Resolve(d.Layout),
		transport: t,
	}, nil
}

func (h *remoteHost) ID() string               { return h.directive.ID }
func (h *remoteHost) Priority() int            { return h.directive.Priority }
func (h *remoteHost) Enabled() bool            { return h.directive.Enabled }
func (h *remoteHost) Trusted() bool            { return h.directive.Trusted }
func (h *remoteHost) Layout() Layout           { return h.layout }
func (h *remoteHost) Directive() HostDirective { return h.directive }

func (h *remoteHost) Exists(ctx context.Context, rel string) (bool, error) {
	return h.transport.exists(ctx, rel)
}

func (h *remoteHost) Fetch(ctx context.Context, rel string) (io.ReadCloser, time.Time, error) {
	return h.transport.fetch(ctx, rel)
}

// KnownGroups loads the index once. A failed load is retried on the next call.
func (h *remoteHost) KnownGroups(ctx context.Context) ([]string, error) {
	if h.directive.Index == "" {
		return nil, nil
	}
	h.groupsMu.Lock()
	defer h.groupsMu.Unlock()
	if h.loaded {
		return h.groups, nil
	}

	rc, _, err := h.transport.fetch(ctx, strings.TrimPrefix(h.directive.Index, "/"))
	if errors.Is(err, errNotFound) {
		h.loaded = true
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("host %q: read index: %w", h.directive.ID, err)
	}
	defer rc.Close()

	groups, err := parseIndex(rc)
	if err != nil {
		return nil, fmt.Errorf("host %q: read index: %w", h.directive.ID, err)
	}
	h.groups, h.loaded = groups, true
	return groups, nil
}

// parseIndex reads one group per line, ignoring blank lines and # comments.
func parseIndex(r io.Reader) ([]string, error) {
	var groups []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		groups = append(groups, strings.Trim(line, "/"))
	}
	return groups, sc.Err()
}

// servesGroup reports whether group is one of known or nested under one of them.
func servesGroup(known []string, group string) bool {
	for _, g := range known {
		if group == g || strings.HasPrefix(group, g+"/") {
			return true
		}
	}
	return false
}
