package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Local stores objects on the filesystem below Root. Paths are
// forward-slash relative paths; BaseURL is the URL prefix Root is served at.
type Local struct {
	Root    string
	BaseURL string
}

// NewLocal returns a Local backend rooted at dir and served under baseURL.
func NewLocal(dir, baseURL string) *Local {
	return &Local{Root: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (l *Local) resolve(p string) (string, error) {
	clean := path.Clean("/" + p)
	if clean == "/" || strings.Contains(p, "..") {
		return "", fmt.Errorf("media: invalid path %q", p)
	}
	return filepath.Join(l.Root, filepath.FromSlash(clean[1:])), nil
}

// Put writes r to p, failing with ErrExists if the file is already there.
func (l *Local) Put(_ context.Context, p string, r io.Reader, _ int64, _ string) error {
	full, err := l.resolve(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrExists
		}
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return err
	}
	return nil
}

// Delete removes the file at p. A file that is already gone is not an error.
func (l *Local) Delete(_ context.Context, p string) error {
	full, err := l.resolve(p)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// URL returns BaseURL joined with p.
func (l *Local) URL(p string) string {
	return l.BaseURL + "/" + strings.TrimLeft(p, "/")
}
