package detail

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/hanko-blog/internal/catalog"
	"finitefield.org/hanko-blog/internal/content"
)

type countingFetcher struct {
	calls []string
	err   error
}

func (f *countingFetcher) Fetch(_ context.Context, name string) (content.Fragment, error) {
	f.calls = append(f.calls, name)
	if f.err != nil {
		return content.Fragment{}, f.err
	}
	return content.Fragment{Name: name, HTML: template.HTML("<p>body of " + name + "</p>"), Description: "from fragment"}, nil
}

func snapshot() *catalog.Snapshot {
	return catalog.NewSnapshot([]catalog.PostRecord{
		{Slug: "a", Title: "A", Category: "공부", File: "a.html"},
		{Slug: "b", Title: "B", Category: "수업", File: "b.html", Summary: "about b"},
		{Slug: "c", Title: "C", File: "c.html"},
	})
}

func TestUnknownSlugSkipsFetch(t *testing.T) {
	f := &countingFetcher{}
	snap := catalog.NewSnapshot([]catalog.PostRecord{{Slug: "a", Title: "A"}, {Slug: "b", Title: "B"}})

	page := Build(context.Background(), snap, "x", f, Options{})
	require.False(t, page.Found())
	require.Equal(t, KeyNotFound, page.Message)
	require.Equal(t, http.StatusNotFound, page.Status)
	require.ErrorIs(t, page.Err, catalog.ErrNotFound)
	require.Empty(t, f.calls)

	page = Build(context.Background(), snap, "", f, Options{})
	require.Equal(t, KeyNotFound, page.Message)
	require.Empty(t, f.calls)
}

func TestMissingCatalog(t *testing.T) {
	f := &countingFetcher{}
	page := Build(context.Background(), nil, "a", f, Options{})
	require.Equal(t, KeyListFailed, page.Message)
	require.Equal(t, http.StatusBadGateway, page.Status)
	require.True(t, catalog.IsLoadError(page.Err))
	require.Empty(t, f.calls)
}

func TestAdjacency(t *testing.T) {
	f := &countingFetcher{}
	page := Build(context.Background(), snapshot(), "b", f, Options{})
	require.Equal(t, "a", page.Prev.Slug)
	require.Equal(t, "c", page.Next.Slug)

	page = Build(context.Background(), snapshot(), "a", f, Options{})
	require.Nil(t, page.Prev)
	require.Equal(t, "b", page.Next.Slug)
}

func TestSuccessfulPage(t *testing.T) {
	f := &countingFetcher{}
	page := Build(context.Background(), snapshot(), "b", f, Options{
		Resolve: func(file string) string { return "posts/" + file },
	})
	require.True(t, page.Found())
	require.Empty(t, page.Message)
	require.Equal(t, http.StatusOK, page.Status)
	require.Equal(t, []string{"posts/b.html"}, f.calls)
	require.Equal(t, "<p>body of posts/b.html</p>", string(page.Content))
	require.Equal(t, "about b", page.Description)

	page = Build(context.Background(), snapshot(), "a", f, Options{})
	require.Equal(t, "from fragment", page.Description)
}

func TestFragmentFailureKeepsNavigation(t *testing.T) {
	f := &countingFetcher{err: &catalog.LoadError{Op: "fragment", Path: "c.html", Err: errors.New("boom")}}
	page := Build(context.Background(), snapshot(), "c", f, Options{})
	require.True(t, page.Found())
	require.Equal(t, KeyContentFailed, page.Message)
	require.Equal(t, http.StatusBadGateway, page.Status)
	require.Empty(t, page.Content)
	require.Equal(t, "b", page.Prev.Slug)
	require.Nil(t, page.Next)
	require.Len(t, page.Flat, 3)
}

func TestSidebarGrouping(t *testing.T) {
	page := Build(context.Background(), snapshot(), "c", &countingFetcher{}, Options{
		GroupSidebar:  true,
		CategoryOrder: catalog.DefaultCategoryOrder,
	})
	require.Nil(t, page.Flat)
	require.Len(t, page.Groups, 3)
	names := []string{page.Groups[0].Name, page.Groups[1].Name, page.Groups[2].Name}
	require.Equal(t, []string{"수업", "공부", "기타"}, names)
	require.False(t, page.Groups[0].Open)
	require.True(t, page.Groups[2].Open)
	require.True(t, page.Groups[2].Links[0].Active)
	require.False(t, page.Groups[0].Links[0].Active)
}

func TestFlatSidebarMarksActive(t *testing.T) {
	page := Build(context.Background(), snapshot(), "b", &countingFetcher{}, Options{})
	require.Equal(t, []Link{
		{Slug: "a", Title: "A"},
		{Slug: "b", Title: "B", Active: true},
		{Slug: "c", Title: "C"},
	}, page.Flat)
}
