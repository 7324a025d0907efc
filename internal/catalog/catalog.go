package catalog

import (
	"strings"

	"golang.org/x/text/cases"
)

// DefaultUncategorized labels records without a category.
const DefaultUncategorized = "기타"

// PostRecord is a single entry of the catalog document.
type PostRecord struct {
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Summary  string   `json:"summary,omitempty"`
	Date     string   `json:"date,omitempty"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags"`
	File     string   `json:"file,omitempty"`
}

// CategoryOr returns the record's category, or fallback when it has none.
func (p PostRecord) CategoryOr(fallback string) string {
	if c := strings.TrimSpace(p.Category); c != "" {
		return c
	}
	if fallback == "" {
		return DefaultUncategorized
	}
	return fallback
}

// Snapshot is the immutable, ordered result of one successful load.
type Snapshot struct {
	records []PostRecord
	index   map[string]int
}

// NewSnapshot indexes records by slug. Callers must guarantee slug uniqueness;
// Store.Load validates it before building a snapshot.
func NewSnapshot(records []PostRecord) *Snapshot {
	s := &Snapshot{
		records: make([]PostRecord, len(records)),
		index:   make(map[string]int, len(records)),
	}
	for i, r := range records {
		s.records[i] = cloneRecord(r)
		s.index[r.Slug] = i
	}
	return s
}

// Len reports the number of records.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Records returns a copy of all records in catalog order.
func (s *Snapshot) Records() []PostRecord {
	if s == nil {
		return nil
	}
	return copyRecords(s.records)
}

// Lookup finds a record by slug.
func (s *Snapshot) Lookup(slug string) (PostRecord, bool) {
	if s == nil {
		return PostRecord{}, false
	}
	i, ok := s.index[slug]
	if !ok {
		return PostRecord{}, false
	}
	return cloneRecord(s.records[i]), true
}

// Get finds a record by slug, returning a *NotFoundError when absent.
func (s *Snapshot) Get(slug string) (PostRecord, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return PostRecord{}, &NotFoundError{}
	}
	rec, ok := s.Lookup(slug)
	if !ok {
		return PostRecord{}, &NotFoundError{Slug: slug}
	}
	return rec, nil
}

// Adjacent returns the records before and after slug in full catalog order.
// Either result is nil at the boundaries or when slug is unknown.
func (s *Snapshot) Adjacent(slug string) (prev, next *PostRecord) {
	if s == nil {
		return nil, nil
	}
	i, ok := s.index[slug]
	if !ok {
		return nil, nil
	}
	if i > 0 {
		p := cloneRecord(s.records[i-1])
		prev = &p
	}
	if i+1 < len(s.records) {
		n := cloneRecord(s.records[i+1])
		next = &n
	}
	return prev, next
}

// Filter returns, in catalog order, the records whose title, summary or any tag
// contains query after case folding. An empty query returns every record.
func (s *Snapshot) Filter(query string) []PostRecord {
	if s == nil {
		return nil
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return s.Records()
	}
	fold := cases.Fold()
	needle := fold.String(query)
	out := make([]PostRecord, 0, len(s.records))
	for _, r := range s.records {
		if matches(fold, r, needle) {
			out = append(out, cloneRecord(r))
		}
	}
	return out
}

func matches(fold cases.Caser, r PostRecord, needle string) bool {
	if strings.Contains(fold.String(r.Title), needle) {
		return true
	}
	if r.Summary != "" && strings.Contains(fold.String(r.Summary), needle) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(fold.String(tag), needle) {
			return true
		}
	}
	return false
}

func cloneRecord(r PostRecord) PostRecord {
	cp := r
	if r.Tags != nil {
		cp.Tags = make([]string, len(r.Tags))
		copy(cp.Tags, r.Tags)
	}
	return cp
}

func copyRecords(src []PostRecord) []PostRecord {
	out := make([]PostRecord, len(src))
	for i, r := range src {
		out[i] = cloneRecord(r)
	}
	return out
}
