package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"finitefield.org/hanko-blog/internal/source"
)

// DefaultPath is the catalog document location relative to the content root.
const DefaultPath = "posts/posts.json"

var tracer = otel.Tracer("finitefield.org/hanko-blog/internal/catalog")

// Store loads the catalog document from a source.
type Store struct {
	src  source.Source
	path string
}

// NewStore constructs a Store reading docPath (DefaultPath when blank) from src.
func NewStore(src source.Source, docPath string) *Store {
	docPath = strings.TrimSpace(docPath)
	if docPath == "" {
		docPath = DefaultPath
	}
	return &Store{src: src, path: docPath}
}

// Path returns the catalog document name.
func (s *Store) Path() string { return s.path }

// Source returns the underlying source.
func (s *Store) Source() source.Source { return s.src }

// FragmentPath resolves a record's file relative to the catalog document directory.
func (s *Store) FragmentPath(file string) string {
	return path.Join(path.Dir(s.path), strings.TrimLeft(file, "/"))
}

// Load fetches and decodes the catalog document. Every call re-fetches; callers hold
// the returned snapshot.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	ctx, span := tracer.Start(ctx, "catalog.Load")
	defer span.End()
	span.SetAttributes(attribute.String("catalog.path", s.path))

	snap, err := s.load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog load failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("catalog.records", snap.Len()))
	return snap, nil
}

func (s *Store) load(ctx context.Context) (*Snapshot, error) {
	if s == nil || s.src == nil {
		return nil, &LoadError{Op: "fetch", Err: errors.New("no source configured")}
	}
	data, err := source.ReadAll(ctx, s.src, s.path)
	if err != nil {
		return nil, &LoadError{Op: "fetch", Path: s.path, Err: err}
	}
	records, err := Decode(data)
	if err != nil {
		return nil, &LoadError{Op: "decode", Path: s.path, Err: err}
	}
	return NewSnapshot(records), nil
}

// Decode parses a catalog document and validates the slug and title invariants.
func Decode(data []byte) ([]PostRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var records []PostRecord
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	if records == nil {
		return nil, errors.New("document is not an array")
	}
	seen := make(map[string]int, len(records))
	for i := range records {
		r := &records[i]
		r.Slug = strings.TrimSpace(r.Slug)
		if r.Slug == "" {
			return nil, fmt.Errorf("record %d: slug is required", i)
		}
		if strings.TrimSpace(r.Title) == "" {
			return nil, fmt.Errorf("record %d (%s): title is required", i, r.Slug)
		}
		if prev, dup := seen[r.Slug]; dup {
			return nil, fmt.Errorf("record %d: slug %q duplicates record %d", i, r.Slug, prev)
		}
		seen[r.Slug] = i
		if r.Tags == nil {
			r.Tags = []string{}
		}
	}
	return records, nil
}

// Holder publishes the current snapshot to concurrent readers.
type Holder struct {
	snap atomic.Pointer[Snapshot]
}

// Load returns the held snapshot, or nil when no load has succeeded.
func (h *Holder) Load() *Snapshot {
	if h == nil {
		return nil
	}
	return h.snap.Load()
}

// Store publishes snap.
func (h *Holder) Store(snap *Snapshot) {
	h.snap.Store(snap)
}
