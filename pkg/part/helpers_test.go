// SPDX-License-Identifier: MPL-2.0

package part

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/depotkit/depot/pkg/classpath"
)

const widgetURI = "artifact:part:org/acme/widget#1.0"

// memRepo serves descriptors from memory and counts how often each is opened.
type memRepo struct {
	mu    sync.Mutex
	docs  map[string]string
	links map[string]string
	files map[string]string
	opens map[string]int
	delay time.Duration
	// onOpen runs before each Open, outside the lock.
	onOpen func(uri string)
}

func newMemRepo() *memRepo {
	return &memRepo{
		docs:  make(map[string]string),
		links: make(map[string]string),
		files: make(map[string]string),
		opens: make(map[string]int),
	}
}

func (r *memRepo) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	if r.onOpen != nil {
		r.onOpen(uri)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opens[uri]++
	doc, ok := r.docs[uri]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", uri, fs.ErrNotExist)
	}
	return io.NopCloser(strings.NewReader(doc)), nil
}

func (r *memRepo) Resolve(_ context.Context, uri string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.files[uri]
	if !ok {
		return "", fmt.Errorf("resolve %s: %w", uri, fs.ErrNotExist)
	}
	return p, nil
}

func (r *memRepo) ResolveLink(_ context.Context, uri string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if target, ok := r.links[uri]; ok {
		return target, nil
	}
	return uri, nil
}

func (r *memRepo) openCount(uri string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opens[uri]
}

// partDoc wraps body in a part root element with an info block.
func partDoc(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<part xmlns="urn:depot:part">
  <info title="Widget">
    <description>A widget.</description>
  </info>
` + body + `
</part>
`
}

const pluginBody = `
  <classpath>
    <public><uri>artifact:jar:org/acme/widget-api#1.0</uri></public>
    <private><uri>artifact:jar:org/acme/widget-impl#1.0</uri></private>
  </classpath>
  <plugin class="org.acme.Widget">
    <param key="color" value="blue"/>
    <param key="size">large</param>
  </plugin>`

func emptyClasspath() classpath.Classpath { return classpath.Classpath{} }
