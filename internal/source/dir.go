package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Dir serves documents from a local directory.
type Dir struct {
	root string
}

// NewDir constructs a directory-backed source.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Root returns the directory the source reads from.
func (d *Dir) Root() string { return d.root }

// Open opens name below the directory root.
func (d *Dir) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(d.root, filepath.FromSlash(clean)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("source: %s: %w", clean, ErrNotExist)
		}
		return nil, err
	}
	return f, nil
}

// Close is a no-op for directories.
func (d *Dir) Close() error { return nil }

func (d *Dir) String() string { return "dir:" + d.root }
