package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound matches any *NotFoundError via errors.Is.
var ErrNotFound = errors.New("catalog: not found")

// LoadError reports a failed fetch or decode of the catalog document or a content fragment.
type LoadError struct {
	Op   string
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("catalog: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("catalog: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// NotFoundError reports a missing slug. An empty Slug means none was provided.
type NotFoundError struct {
	Slug string
}

func (e *NotFoundError) Error() string {
	if e.Slug == "" {
		return "catalog: no slug provided"
	}
	return fmt.Sprintf("catalog: post %q not found", e.Slug)
}

// Is makes errors.Is(err, ErrNotFound) hold for every NotFoundError.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// IsLoadError reports whether err wraps a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}
