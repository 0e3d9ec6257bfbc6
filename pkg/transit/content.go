// SPDX-License-Identifier: MPL-2.0

package transit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/depotkit/depot/pkg/artifact"
)

// ArchiveCodebase is the built-in content handler that unpacks zip artifacts.
// It accepts a "strip" parameter giving the number of leading path
// components to drop.
const ArchiveCodebase = "archive"

type (
	// ContentHandler turns a resolved artifact file into a usable value.
	ContentHandler interface {
		Content(ctx context.Context, a artifact.Artifact, file string) (any, error)
	}

	// ContentHandlerFunc adapts a function to ContentHandler.
	ContentHandlerFunc func(ctx context.Context, a artifact.Artifact, file string) (any, error)

	// ContentFactory creates the handler for a content directive.
	ContentFactory func(d ContentDirective) (ContentHandler, error)

	archiveHandler struct {
		strip int
	}
)

// Content calls f.
func (f ContentHandlerFunc) Content(ctx context.Context, a artifact.Artifact, file string) (any, error) {
	return f(ctx, a, file)
}

func newArchiveHandler(d ContentDirective) (ContentHandler, error) {
	h := &archiveHandler{}
	if v, ok := d.Param("strip"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("content %q: invalid strip %q", d.ID, v)
		}
		h.strip = n
	}
	return h, nil
}

// Content unpacks the archive next to it (file + ".d") once and returns the directory.
func (h *archiveHandler) Content(_ context.Context, _ artifact.Artifact, file string) (any, error) {
	dir := file + ".d"
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return dir, nil
	}
	tmp, err := os.MkdirTemp(filepath.Dir(file), "."+filepath.Base(file)+".*.tmp")
	if err != nil {
		return nil, &CacheError{Op: "extract", Path: dir, Err: err}
	}
	if err := extract(file, tmp, h.strip); err != nil {
		os.RemoveAll(tmp)
		return nil, err
	}
	if err := os.Rename(tmp, dir); err != nil {
		os.RemoveAll(tmp)
		if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
			return dir, nil
		}
		return nil, &CacheError{Op: "extract", Path: dir, Err: err}
	}
	return dir, nil
}

// buildHandlers instantiates the handler of every content directive.
func buildHandlers(directives []ContentDirective, factories map[string]ContentFactory) (map[string]ContentHandler, error) {
	handlers := make(map[string]ContentHandler, len(directives))
	for _, d := range directives {
		factory, ok := factories[d.Codebase]
		if !ok {
			return nil, fmt.Errorf("content %q: no handler registered for codebase %q", d.ID, d.Codebase)
		}
		h, err := factory(d)
		if err != nil {
			return nil, err
		}
		handlers[d.ID] = h
	}
	return handlers, nil
}
