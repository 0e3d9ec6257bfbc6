// SPDX-License-Identifier: MPL-2.0

package transit

import (
	"net/http"
	"net/url"
	"path"
	"strings"
)

func matchesAny(patterns []string, hostname string) bool {
	hostname = strings.ToLower(hostname)
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == hostname {
			return true
		}
		if ok, err := path.Match(p, hostname); err == nil && ok {
			return true
		}
	}
	return false
}

// proxyFunc returns an http.Transport proxy function for d, or nil when no
// proxy is configured.
func proxyFunc(d *ProxyDirective) (func(*http.Request) (*url.URL, error), error) {
	if d == nil || d.Host == "" {
		return nil, nil
	}
	u, err := url.Parse(d.Host)
	if err != nil {
		return nil, err
	}
	if d.Username != "" {
		u.User = url.UserPassword(d.Username, d.Password)
	}
	return func(req *http.Request) (*url.URL, error) {
		if d.Excluded(req.URL.Hostname()) {
			return nil, nil
		}
		return u, nil
	}, nil
}

// hostname returns the host name of a host directive URL.
func hostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
