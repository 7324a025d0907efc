// Package detail assembles the post detail page: slug lookup, lazy fragment fetch,
// the sibling list and prev/next adjacency.
package detail

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"finitefield.org/hanko-blog/internal/catalog"
	"finitefield.org/hanko-blog/internal/content"
)

// Message keys shown in place of missing parts of the page.
const (
	KeyNotFound      = "post.not_found"
	KeyListFailed    = "post.list_failed"
	KeyContentFailed = "post.content_failed"
)

// Fetcher loads a content fragment by name.
type Fetcher interface {
	Fetch(ctx context.Context, name string) (content.Fragment, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, name string) (content.Fragment, error)

func (f FetcherFunc) Fetch(ctx context.Context, name string) (content.Fragment, error) {
	return f(ctx, name)
}

// Options configures the sidebar and fragment resolution.
type Options struct {
	GroupSidebar  bool
	CategoryOrder []string
	Uncategorized string
	// Resolve maps a record's file to a source name. Identity when nil.
	Resolve func(file string) string
}

// Link is one entry of the sibling list.
type Link struct {
	Slug   string
	Title  string
	Active bool
}

// Group is a sibling-list category. Open is set on the current post's group.
type Group struct {
	Name  string
	Open  bool
	Links []Link
}

// Page is everything the detail template needs.
type Page struct {
	Slug        string
	Post        *catalog.PostRecord
	Content     template.HTML
	Description string
	// Message is the placeholder key for the content area, empty on success.
	Message string
	Err     error
	Status  int
	Groups  []Group
	Flat    []Link
	Prev    *catalog.PostRecord
	Next    *catalog.PostRecord
}

// Found reports whether the slug resolved to a record.
func (p Page) Found() bool { return p.Post != nil }

// Build resolves slug against snap and fetches its fragment. Unknown slugs never
// reach the fetcher. A nil snap means the catalog could not be loaded.
func Build(ctx context.Context, snap *catalog.Snapshot, slug string, f Fetcher, opts Options) Page {
	page := Page{Slug: slug, Status: http.StatusOK}
	if snap == nil {
		page.Message = KeyListFailed
		page.Err = &catalog.LoadError{Op: "fetch", Err: errors.New("catalog unavailable")}
		page.Status = http.StatusBadGateway
		return page
	}
	rec, err := snap.Get(slug)
	if err != nil {
		page.Message = KeyNotFound
		page.Err = err
		page.Status = http.StatusNotFound
		return page
	}
	page.Post = &rec
	page.Prev, page.Next = snap.Adjacent(rec.Slug)
	if opts.GroupSidebar {
		page.Groups = sidebarGroups(snap.Records(), rec, opts)
	} else {
		page.Flat = links(snap.Records(), rec.Slug)
	}

	name := rec.File
	if opts.Resolve != nil && name != "" {
		name = opts.Resolve(name)
	}
	frag, err := f.Fetch(ctx, name)
	if err != nil {
		page.Message = KeyContentFailed
		page.Err = err
		page.Status = http.StatusBadGateway
		page.Description = rec.Summary
		return page
	}
	page.Content = frag.HTML
	page.Description = rec.Summary
	if page.Description == "" {
		page.Description = frag.Description
	}
	return page
}

func sidebarGroups(records []catalog.PostRecord, current catalog.PostRecord, opts Options) []Group {
	currentCat := current.CategoryOr(opts.Uncategorized)
	grouped := catalog.GroupByCategory(records, opts.CategoryOrder, opts.Uncategorized)
	out := make([]Group, len(grouped))
	for i, g := range grouped {
		out[i] = Group{
			Name:  g.Name,
			Open:  g.Name == currentCat,
			Links: links(g.Posts, current.Slug),
		}
	}
	return out
}

func links(records []catalog.PostRecord, active string) []Link {
	out := make([]Link, len(records))
	for i, r := range records {
		out[i] = Link{Slug: r.Slug, Title: r.Title, Active: r.Slug == active}
	}
	return out
}
