package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
)

// ErrNotExist is returned when the requested document is absent from the source.
var ErrNotExist = errors.New("source: not found")

// Source reads first-party documents (the catalog and its content fragments) by
// slash-separated name relative to a content root.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Close() error
	String() string
}

// Open resolves root into a Source. Supported forms:
//   - http:// or https:// base URLs
//   - gs://bucket/prefix Cloud Storage locations
//   - anything else is treated as a local directory
func Open(ctx context.Context, root string) (Source, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		root = "."
	}
	switch {
	case strings.HasPrefix(root, "http://"), strings.HasPrefix(root, "https://"):
		return NewHTTP(root, nil)
	case strings.HasPrefix(root, "gs://"):
		bucket, prefix, err := parseGCSRoot(root)
		if err != nil {
			return nil, err
		}
		return NewBucket(ctx, bucket, prefix)
	default:
		return NewDir(root), nil
	}
}

// ReadAll opens name on src and returns its full contents.
func ReadAll(ctx context.Context, src Source, name string) ([]byte, error) {
	if src == nil {
		return nil, errors.New("source: nil source")
	}
	rc, err := src.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", name, err)
	}
	return data, nil
}

// cleanName normalises a document name and rejects paths escaping the root.
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	name = strings.TrimLeft(name, "/")
	if name == "" {
		return "", fmt.Errorf("source: empty name: %w", ErrNotExist)
	}
	cleaned := path.Clean(name)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("source: name %q escapes root: %w", name, ErrNotExist)
	}
	return cleaned, nil
}

func parseGCSRoot(root string) (string, string, error) {
	u, err := url.Parse(root)
	if err != nil {
		return "", "", fmt.Errorf("source: parse %q: %w", root, err)
	}
	bucket := strings.TrimSpace(u.Host)
	if bucket == "" {
		return "", "", fmt.Errorf("source: bucket missing in %q", root)
	}
	return bucket, strings.Trim(u.Path, "/"), nil
}
