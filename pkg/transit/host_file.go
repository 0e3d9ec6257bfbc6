// SPDX-License-Identifier: MPL-2.0

package transit

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

type fileTransport struct {
	root string
}

func newFileTransport(u *url.URL) *fileTransport {
	return &fileTransport{root: filepath.FromSlash(u.Path)}
}

func (t *fileTransport) path(rel string) string {
	return filepath.Join(t.root, filepath.FromSlash(rel))
}

func (t *fileTransport) exists(_ context.Context, rel string) (bool, error) {
	info, err := os.Stat(t.path(rel))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

func (t *fileTransport) fetch(_ context.Context, rel string) (io.ReadCloser, time.Time, error) {
	p := t.path(rel)
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, time.Time{}, errNotFound
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, time.Time{}, err
	}
	return f, info.ModTime(), nil
}
