// Package storage keeps uploaded files. Local writes them below a directory
// that the HTTP server exposes read-only under a base URL.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Local stores files on the local disk.
type Local struct {
	root    string
	baseURL string
}

// NewLocal returns a Local rooted at dir whose files are served under baseURL.
func NewLocal(dir, baseURL string) *Local {
	return &Local{root: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Root is the directory files are written to.
func (l *Local) Root() string {
	return l.root
}

// Put writes r to key (a slash-separated relative path) and returns its URL.
// The file is written to a temporary name first and renamed into place.
func (l *Local) Put(ctx context.Context, key string, r io.Reader, _ string) (string, error) {
	clean := path.Clean("/" + key)[1:]
	if clean == "" || clean != key {
		return "", fmt.Errorf("storage.Local.Put: invalid key %q", key)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("storage.Local.Put: %w", err)
	}

	dst := filepath.Join(l.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("storage.Local.Put: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("storage.Local.Put: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close() //nolint:errcheck
		return "", fmt.Errorf("storage.Local.Put: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("storage.Local.Put: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("storage.Local.Put: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("storage.Local.Put: %w", err)
	}

	u, err := url.JoinPath(l.baseURL+"/", clean)
	if err != nil {
		return "", fmt.Errorf("storage.Local.Put: %w", err)
	}
	return u, nil
}
