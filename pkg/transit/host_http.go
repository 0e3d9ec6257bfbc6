// SPDX-License-Identifier: MPL-2.0

package transit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

type httpTransport struct {
	base    *url.URL
	client  *http.Client
	limiter *rate.Limiter
	auth    func(*http.Request)
}

func newHTTPTransport(d HostDirective, u *url.URL, opts hostOptions) (*httpTransport, error) {
	client := opts.httpClient
	if client == nil {
		proxy, err := proxyFunc(opts.proxy)
		if err != nil {
			return nil, fmt.Errorf("proxy: %w", err)
		}
		tr := http.DefaultTransport.(*http.Transport).Clone()
		if proxy != nil {
			tr.Proxy = proxy
		}
		client = &http.Client{Transport: tr}
	}

	base := *u
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	t := &httpTransport{base: &base, client: client}
	if d.RateLimit > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(d.RateLimit), 1)
	}
	switch strings.ToLower(d.Scheme) {
	case "bearer":
		if d.Password != "" {
			token := d.Password
			t.auth = func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
		}
	case "", "basic":
		if d.Username != "" {
			user, pass := d.Username, d.Password
			t.auth = func(r *http.Request) { r.SetBasicAuth(user, pass) }
		}
	default:
		return nil, fmt.Errorf("unsupported auth scheme %q", d.Scheme)
	}
	return t, nil
}

func (t *httpTransport) request(ctx context.Context, method, rel string) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	target := t.base.ResolveReference(&url.URL{Path: rel})
	req, err := http.NewRequestWithContext(ctx, method, target.String(), nil)
	if err != nil {
		return nil, err
	}
	if t.auth != nil {
		t.auth(req)
	}
	return t.client.Do(req)
}

func (t *httpTransport) exists(ctx context.Context, rel string) (bool, error) {
	resp, err := t.request(ctx, http.MethodHead, rel)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return false, nil
	default:
		return false, fmt.Errorf("HEAD %s: %s", rel, resp.Status)
	}
}

func (t *httpTransport) fetch(ctx context.Context, rel string) (io.ReadCloser, time.Time, error) {
	resp, err := t.request(ctx, http.MethodGet, rel)
	if err != nil {
		return nil, time.Time{}, err
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusGone:
		resp.Body.Close()
		return nil, time.Time{}, errNotFound
	default:
		resp.Body.Close()
		return nil, time.Time{}, fmt.Errorf("GET %s: %s", rel, resp.Status)
	}

	var modTime time.Time
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if parsed, err := http.ParseTime(lm); err == nil {
			modTime = parsed
		}
	}
	return resp.Body, modTime, nil
}
