// SPDX-License-Identifier: MPL-2.0

package transit

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

type entryReader struct {
	io.ReadCloser
	archive *zip.ReadCloser
}

func (r *entryReader) Close() error {
	err := r.ReadCloser.Close()
	if cerr := r.archive.Close(); err == nil {
		err = cerr
	}
	return err
}

// openEntry opens the named entry of the zip archive at file.
func openEntry(file, entry string) (io.ReadCloser, error) {
	archive, err := zip.OpenReader(file)
	if err != nil {
		return nil, &CacheError{Op: "open archive", Path: file, Err: err}
	}
	name := strings.TrimPrefix(entry, "/")
	for _, f := range archive.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			archive.Close()
			return nil, &CacheError{Op: "open entry", Path: file + "!/" + name, Err: err}
		}
		return &entryReader{ReadCloser: rc, archive: archive}, nil
	}
	archive.Close()
	return nil, &CacheError{Op: "open entry", Path: file + "!/" + name, Err: fs.ErrNotExist}
}

// extract unpacks the zip archive at file into dir, dropping the first strip
// path components of every entry.
func extract(file, dir string, strip int) error {
	archive, err := zip.OpenReader(file)
	if err != nil {
		return &CacheError{Op: "open archive", Path: file, Err: err}
	}
	defer archive.Close()

	root, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	for _, f := range archive.File {
		parts := strings.Split(strings.Trim(f.Name, "/"), "/")
		if len(parts) <= strip {
			continue
		}
		target := filepath.Join(root, filepath.FromSlash(strings.Join(parts[strip:], "/")))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return &CacheError{Op: "extract", Path: f.Name, Err: fmt.Errorf("entry escapes %s", dir)}
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return &CacheError{Op: "extract", Path: target, Err: err}
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return &CacheError{Op: "extract", Path: target, Err: err}
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.Mode().Perm()|0o200)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
