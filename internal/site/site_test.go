package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/hanko-blog/internal/catalog"
	"finitefield.org/hanko-blog/internal/config"
	"finitefield.org/hanko-blog/internal/content"
	"finitefield.org/hanko-blog/internal/detail"
	"finitefield.org/hanko-blog/internal/i18n"
	"finitefield.org/hanko-blog/internal/testutil"
	"finitefield.org/hanko-blog/internal/view"
)

func sampleRecords(n int) []catalog.PostRecord {
	cats := []string{"수업", "인사이트", ""}
	recs := make([]catalog.PostRecord, n)
	for i := range recs {
		recs[i] = catalog.PostRecord{
			Slug:     fmt.Sprintf("p%d", i+1),
			Title:    fmt.Sprintf("Post %d", i+1),
			Summary:  fmt.Sprintf("summary %d", i+1),
			Date:     fmt.Sprintf("2024-01-%02d", i+1),
			Category: cats[i%len(cats)],
			Tags:     []string{"go"},
			File:     fmt.Sprintf("p%d.html", i+1),
		}
	}
	return recs
}

type countingFetcher struct {
	calls []string
	err   error
}

func (f *countingFetcher) Fetch(_ context.Context, name string) (content.Fragment, error) {
	f.calls = append(f.calls, name)
	if f.err != nil {
		return content.Fragment{}, f.err
	}
	return content.Fragment{Name: name, HTML: template.HTML(`<p class="body">body of ` + name + `</p>`)}, nil
}

func newTestSite(t *testing.T, snap *catalog.Snapshot, f detail.Fetcher) (*Site, *i18n.Bundle) {
	t.Helper()
	cfg, err := config.Load(config.WithoutEnv(), config.WithOverrides(map[string]any{
		"site.base_url": "https://blog.example.com",
	}))
	require.NoError(t, err)

	bundle, err := i18n.Load("../../locales", i18n.DefaultFallback, []string{"ko", "en"})
	require.NoError(t, err)
	tmpl, err := NewTemplates("../../templates", false, bundle)
	require.NoError(t, err)

	holder := &catalog.Holder{}
	if snap != nil {
		holder.Store(snap)
	}
	return New(Options{
		Config:    cfg,
		Bundle:    bundle,
		Holder:    holder,
		Fetcher:   f,
		Templates: tmpl,
	}), bundle
}

func renderPage(t *testing.T, s *Site, data any) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, s.templates.Render(&buf, LayoutTemplate, data))
	return buf.String()
}

func TestIndexRendersFirstPage(t *testing.T) {
	snap := catalog.NewSnapshot(sampleRecords(10))
	s, _ := newTestSite(t, snap, &countingFetcher{})
	r := s.Renderer("ko", view.QueryLinks{}, &view.DefaultEndpoints)
	v := view.NewController(snap, view.InitialState(), s.ViewOptions()).View()

	data, err := s.Index("ko", "/", r, v, true)
	require.NoError(t, err)
	data.CSRFToken = "tok"
	doc := testutil.ParseHTML(t, renderPage(t, s, data))

	require.Equal(t, []string{"Post 1", "Post 2", "Post 3", "Post 4"}, testutil.Texts(doc, "#posts .post-title"))
	require.Equal(t, 3, doc.Find("#pagination .page-btn").Length())
	require.Equal(t, 1, doc.Find("#search").Length())
	require.Contains(t, doc.Find("body").AttrOr("hx-headers", ""), "tok")
	require.Equal(t, "https://blog.example.com/", doc.Find(`link[rel="canonical"]`).AttrOr("href", ""))
	require.Contains(t, doc.Find(`script[type="application/ld+json"]`).First().Text(), `"Blog"`)
	require.Equal(t, 1, doc.Find(".tab-link.active").Length())
	require.Equal(t, 0, doc.Find(".breadcrumbs").Length())
}

func TestIndexLoadFailureShowsPlaceholder(t *testing.T) {
	s, bundle := newTestSite(t, nil, &countingFetcher{})
	r := s.Renderer("ko", view.QueryLinks{}, &view.DefaultEndpoints)

	data, err := s.Index("ko", "/", r, view.View{}, false)
	require.NoError(t, err)
	require.False(t, data.Interactive)
	doc := testutil.ParseHTML(t, renderPage(t, s, data))

	require.Equal(t, bundle.T("ko", view.KeyLoadFailed), doc.Find("#posts .catalog-message").Text())
	require.Equal(t, 0, doc.Find("#search").Length())
	require.Equal(t, 0, doc.Find("#paginationWrapper").Length())
	require.Equal(t, 0, doc.Find(`script[src*="htmx"]`).Length())
}

func TestIndexStaticHasNoHTMX(t *testing.T) {
	snap := catalog.NewSnapshot(sampleRecords(5))
	s, _ := newTestSite(t, snap, &countingFetcher{})
	r := s.Renderer("en", view.PathLinks{}, nil)
	c := view.NewController(snap, view.InitialState(), s.ViewOptions())
	c.ShowPage(2)

	data, err := s.Index("en", "/page/2/", r, c.View(), true)
	require.NoError(t, err)
	doc := testutil.ParseHTML(t, renderPage(t, s, data))

	require.Equal(t, 0, doc.Find("[hx-post], [hx-get]").Length())
	require.Equal(t, "https://blog.example.com/page/2/", doc.Find(`link[rel="canonical"]`).AttrOr("href", ""))
	require.Equal(t, []string{"/posts/p5/"}, testutil.Attrs(doc, "#posts .post-link", "href"))
}

func TestPostRendersDetail(t *testing.T) {
	snap := catalog.NewSnapshot(sampleRecords(3))
	f := &countingFetcher{}
	s, _ := newTestSite(t, snap, f)

	data := s.Post(context.Background(), "ko", "/post", "p2", view.QueryLinks{})
	require.Equal(t, http.StatusOK, data.Post.Page.Status)
	require.Equal(t, []string{"p2.html"}, f.calls)
	doc := testutil.ParseHTML(t, renderPage(t, s, data))

	require.Equal(t, "Post 2", doc.Find("#title").Text())
	require.Equal(t, "body of p2.html", doc.Find("#content .body").Text())
	require.Equal(t, "/post?slug=p1", doc.Find("#prev-post").AttrOr("href", ""))
	require.Equal(t, "/post?slug=p3", doc.Find("#next-post").AttrOr("href", ""))
	require.Equal(t, "인사이트", doc.Find(".post-list details[open]").AttrOr("data-category", ""))
	require.Equal(t, []string{"Post 2"}, testutil.Texts(doc, ".post-list a.active"))
	require.Equal(t, 3, doc.Find(".breadcrumbs li").Length())
	require.Equal(t, 2, doc.Find(`script[type="application/ld+json"]`).Length())
	require.Equal(t, 0, doc.Find(`meta[name="robots"]`).Length())
}

func TestPostUnknownSlugSkipsFetch(t *testing.T) {
	snap := catalog.NewSnapshot(sampleRecords(3))
	f := &countingFetcher{}
	s, bundle := newTestSite(t, snap, f)

	data := s.Post(context.Background(), "ko", "/post", "nope", view.QueryLinks{})
	require.Equal(t, http.StatusNotFound, data.Post.Page.Status)
	require.Empty(t, f.calls)
	doc := testutil.ParseHTML(t, renderPage(t, s, data))

	require.Equal(t, bundle.T("ko", detail.KeyNotFound), doc.Find("#title").Text())
	require.Equal(t, "noindex", doc.Find(`meta[name="robots"]`).AttrOr("content", ""))
	require.Equal(t, 0, doc.Find(".post-list").Length())
}

func TestPostFragmentFailureKeepsNavigation(t *testing.T) {
	snap := catalog.NewSnapshot(sampleRecords(3))
	f := &countingFetcher{err: &catalog.LoadError{Op: "fragment", Path: "p1.html", Err: errors.New("boom")}}
	s, bundle := newTestSite(t, snap, f)

	data := s.Post(context.Background(), "ko", "/post", "p1", view.QueryLinks{})
	require.Equal(t, http.StatusBadGateway, data.Post.Page.Status)
	doc := testutil.ParseHTML(t, renderPage(t, s, data))

	require.Equal(t, "Post 1", doc.Find("#title").Text())
	require.Equal(t, bundle.T("ko", detail.KeyContentFailed), doc.Find("#content .post-message").Text())
	require.Equal(t, 0, doc.Find("#prev-post").Length())
	require.Equal(t, 1, doc.Find("#next-post").Length())
	require.Equal(t, 3, doc.Find(".post-list a").Length())
}
