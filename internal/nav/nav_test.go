package nav

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildMarksActive(t *testing.T) {
	extra := []Item{{Path: "/works/", LabelKey: "nav.works"}, {Path: "https://apps.example.com", LabelKey: "nav.apps"}}

	items := Build("/post", "/", extra)
	require.Len(t, items, 3)
	require.True(t, items[0].Active)
	require.False(t, items[1].Active)
	require.True(t, items[2].External)
	require.False(t, items[2].Active)

	items = Build("/works/game", "/", extra)
	require.False(t, items[0].Active)
	require.True(t, items[1].Active)

	require.True(t, Build("/page/2/", "/", nil)[0].Active)
	require.True(t, Build("", "", nil)[0].Active)
}

func TestBuildUnderPrefix(t *testing.T) {
	extra := []Item{{Path: "/works/", LabelKey: "nav.works"}}

	items := Build("/blog/posts/p1/", "/blog/", extra)
	require.Equal(t, "/blog/", items[0].Href)
	require.True(t, items[0].Active)
	require.False(t, items[1].Active)

	require.True(t, Build("/blog", "/blog/", nil)[0].Active)
	require.True(t, Build("/blog/archive/", "/blog/", nil)[0].Active)
	require.False(t, Build("/blogroll/", "/blog/", nil)[0].Active)
}

func TestPostCrumbs(t *testing.T) {
	crumbs := PostCrumbs("", "공부", "Go", "/post?slug=go")
	require.Equal(t, []Crumb{
		{Href: "/", LabelKey: "breadcrumb.home"},
		{Label: "공부"},
		{Href: "/post?slug=go", Label: "Go", Active: true},
	}, crumbs)
	require.Len(t, PostCrumbs("/", "", "Go", "/x"), 2)
	require.True(t, HomeCrumbs("")[0].Active)
}
